package product

import (
	"context"
	"strings"
	"time"

	"camrent-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetList(ctx context.Context, opts QueryOptions) ([]Product, error)
	GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error)
	Create(ctx context.Context, input NewProduct) (*Product, error)
	Update(ctx context.Context, id uint, input UpdateProduct) (*Product, error)
	SoftDelete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetList(ctx context.Context, opts QueryOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetProductList"),
	)

	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	products, err := s.repo.GetList(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Info("get product list success",
		zap.Int("count", len(products)),
		zap.Int32("page", opts.Page),
		zap.Int32("limit", opts.Limit),
		zap.Duration("duration", time.Since(start)),
	)

	return products, nil
}

func (s *service) GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error) {
	return s.repo.GetByID(ctx, id, includeDeleted)
}

func (s *service) Create(ctx context.Context, input NewProduct) (*Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if input.PricePerDay < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	return s.repo.Create(ctx, input)
}

func (s *service) Update(ctx context.Context, id uint, input UpdateProduct) (*Product, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrNameRequired
	}
	if input.PricePerDay != nil && *input.PricePerDay < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	if !hasAnyUpdateField(input) {
		return nil, ErrNoFieldsToSet
	}

	return s.repo.Update(ctx, id, input)
}

func (s *service) SoftDelete(ctx context.Context, id uint) error {
	return s.repo.SoftDelete(ctx, id)
}

func hasAnyUpdateField(input UpdateProduct) bool {
	return input.Name != nil ||
		input.Category != nil ||
		input.PricePerDay != nil ||
		input.Description != nil ||
		input.ImageURL != nil ||
		input.Quantity != nil ||
		input.Status != nil
}
