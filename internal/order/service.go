package order

import (
	"context"
	"math"
	"time"

	"camrent-be/internal/logger"
	"camrent-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives best-effort completion notices. Implementations must not
// block the caller and must never return the failure to it.
type Notifier interface {
	OrderCompleted(ctx context.Context, n CompletedNotification)
}

type Service interface {
	PlaceOrder(ctx context.Context, userID uint, input PlaceOrderInput) (*Order, error)
	GetUserOrders(ctx context.Context, userID uint) ([]*Order, error)
	GetAllOrders(ctx context.Context) ([]*Order, error)
	CancelOrder(ctx context.Context, orderID, userID uint) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) (*Order, error)
	DeleteOrder(ctx context.Context, orderID uint) error
}

type service struct {
	repo     Repository
	notifier Notifier
	stats    *metrics.OrderStats
}

func NewService(repo Repository, notifier Notifier, stats *metrics.OrderStats) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		stats:    stats,
	}
}

func (s *service) PlaceOrder(ctx context.Context, userID uint, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", userID),
		zap.Int("item_count", len(input.Items)),
	)

	timer := metrics.StartTimer()

	if len(input.Items) == 0 {
		log.Warn("empty item list")
		return nil, ErrNoItems
	}

	items := make([]Item, 0, len(input.Items))
	computed := 0.0
	for i, in := range input.Items {
		if in.Quantity <= 0 {
			log.Warn("invalid quantity", zap.Int("index", i), zap.Int("quantity", in.Quantity))
			return nil, ErrInvalidQuantity
		}
		items = append(items, Item{
			ProductID: in.ProductID,
			Name:      in.Name,
			Price:     in.Price,
			Quantity:  in.Quantity,
			ImageURL:  in.ImageURL,
		})
		computed += in.Price * float64(in.Quantity)
	}

	// The client-supplied total is authoritative. A mismatch against the
	// snapshot prices is logged so pricing drift is visible in ops.
	if math.Abs(computed-input.Total) > 0.005 {
		log.Warn("client total differs from item sum",
			zap.Float64("client_total", input.Total),
			zap.Float64("computed_total", computed),
		)
	}

	o := &Order{
		ExternalID: uuid.New(),
		UserID:     userID,
		Total:      input.Total,
		Status:     StatusPending,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Items:      items,
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		s.stats.Rejected.Inc()
		return nil, err
	}

	s.stats.Placed.Inc()
	log.Info("order placed",
		zap.Uint("order_id", o.ID),
		zap.Float64("total", o.Total),
		zap.Duration("duration", timer.Duration()),
	)

	return o, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.FetchOrders(ctx, &userID)
}

func (s *service) GetAllOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.FetchOrders(ctx, nil)
}

func (s *service) CancelOrder(ctx context.Context, orderID, userID uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.Uint("order_id", orderID),
		zap.Uint("user_id", userID),
	)

	o, err := s.repo.CancelOrderTx(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	s.stats.Cancelled.Inc()
	log.Info("order cancelled, stock restored", zap.Int("item_count", len(o.Items)))
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uint, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.Uint("order_id", orderID),
		zap.String("status", string(status)),
	)

	if !status.Valid() {
		log.Warn("rejected unknown status")
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = time.Now()

	// Notify only on the first transition into completed. The notifier
	// never returns an error; the update has already committed.
	if status == StatusCompleted && previous != StatusCompleted && o.UserEmail != "" {
		s.stats.Completed.Inc()
		s.notifier.OrderCompleted(ctx, CompletedNotification{
			OrderID:     o.ID,
			ExternalID:  o.ExternalID.String(),
			UserEmail:   o.UserEmail,
			Total:       o.Total,
			CompletedAt: time.Now(),
		})
	}

	log.Info("order status updated", zap.String("previous", string(previous)))
	return o, nil
}

func (s *service) DeleteOrder(ctx context.Context, orderID uint) error {
	return s.repo.DeleteOrder(ctx, orderID)
}
