package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"camrent-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetList(ctx context.Context, opts QueryOptions) ([]Product, error)
	GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error)
	Create(ctx context.Context, input NewProduct) (*Product, error)
	Update(ctx context.Context, id uint, input UpdateProduct) (*Product, error)
	SoftDelete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, category, price_per_day, description, image_url, quantity, status, deleted_at, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.PricePerDay,
		&p.Description,
		&p.ImageURL,
		&p.Quantity,
		&p.Status,
		&p.DeletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetList(ctx context.Context, opts QueryOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProductList"),
	)

	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	args := []any{}
	argIndex := 1

	if !opts.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}

	if opts.OnlyActive {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, StatusActive)
		argIndex++
	}

	if opts.Category != "" {
		query += fmt.Sprintf(" AND category ILIKE $%d", argIndex)
		args = append(args, "%"+opts.Category+"%")
		argIndex++
	}

	if opts.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+opts.Search+"%")
		argIndex++
	}

	offset := (opts.Page - 1) * opts.Limit
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, opts.Limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, input NewProduct) (*Product, error) {
	status := StatusActive
	if input.Quantity == 0 {
		status = StatusInactive
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, category, price_per_day, description, image_url, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		input.Name,
		input.Category,
		input.PricePerDay,
		input.Description,
		input.ImageURL,
		input.Quantity,
		status,
	)

	p, err := scanProduct(row)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert product",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id uint, input UpdateProduct) (*Product, error) {
	query := `UPDATE products SET updated_at = NOW()`

	args := []any{}
	argIndex := 1

	if input.Name != nil {
		query += fmt.Sprintf(", name = $%d", argIndex)
		args = append(args, *input.Name)
		argIndex++
	}
	if input.Category != nil {
		query += fmt.Sprintf(", category = $%d", argIndex)
		args = append(args, *input.Category)
		argIndex++
	}
	if input.PricePerDay != nil {
		query += fmt.Sprintf(", price_per_day = $%d", argIndex)
		args = append(args, *input.PricePerDay)
		argIndex++
	}
	if input.Description != nil {
		query += fmt.Sprintf(", description = $%d", argIndex)
		args = append(args, *input.Description)
		argIndex++
	}
	if input.ImageURL != nil {
		query += fmt.Sprintf(", image_url = $%d", argIndex)
		args = append(args, *input.ImageURL)
		argIndex++
	}
	if input.Quantity != nil {
		// Quantity edits re-derive status: depleted products go Inactive,
		// restocked products come back Active.
		query += fmt.Sprintf(", quantity = $%d, status = CASE WHEN $%d <= 0 THEN '%s' ELSE '%s' END",
			argIndex, argIndex, StatusInactive, StatusActive)
		args = append(args, *input.Quantity)
		argIndex++
	} else if input.Status != nil {
		query += fmt.Sprintf(", status = $%d", argIndex)
		args = append(args, *input.Status)
		argIndex++
	}

	query += fmt.Sprintf(" WHERE id = $%d AND deleted_at IS NULL RETURNING %s", argIndex, productColumns)
	args = append(args, id)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) SoftDelete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET deleted_at = NOW(), status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`, StatusInactive, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
