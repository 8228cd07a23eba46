package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"camrent-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrderTx places the order all-or-nothing: every line item's stock
	// is decremented atomically (decrement-if-sufficient) inside one
	// transaction, so a single failing item rolls back every prior decrement.
	CreateOrderTx(ctx context.Context, o *Order) error

	// FetchOrders returns orders newest first, line items included. A nil
	// userID fetches every order (admin listing).
	FetchOrders(ctx context.Context, userID *uint) ([]*Order, error)

	// GetOrderDetail loads one order with its items and the owning user's
	// email joined in.
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)

	// CancelOrderTx restores each line item's stock, reactivates products
	// that regained stock, and marks the order cancelled, in one transaction.
	CancelOrderTx(ctx context.Context, orderID, userID uint) (*Order, error)

	UpdateOrderStatus(ctx context.Context, orderID uint, status Status) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("external_id", o.ExternalID.String()),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// Decrement stock per line item. The WHERE quantity >= $1 guard makes
	// each decrement conditional in a single round-trip; a concurrent order
	// cannot get between the check and the write.
	for _, item := range o.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $1,
			    status = CASE WHEN quantity - $1 <= 0 THEN 'Inactive' ELSE status END,
			    updated_at = NOW()
			WHERE id = $2 AND deleted_at IS NULL AND quantity >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			log.Error("failed to decrement stock",
				zap.Uint("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}

		affected, _ := res.RowsAffected()
		if affected == 1 {
			continue
		}

		// Distinguish a vanished product from insufficient stock.
		var name string
		var available int
		err = tx.QueryRowContext(ctx,
			`SELECT name, quantity FROM products WHERE id = $1 AND deleted_at IS NULL`,
			item.ProductID,
		).Scan(&name, &available)
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("order references missing product", zap.Uint("product_id", item.ProductID))
			return fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
		}
		if err != nil {
			return err
		}

		log.Warn("insufficient stock",
			zap.Uint("product_id", item.ProductID),
			zap.String("product_name", name),
			zap.Int("requested", item.Quantity),
			zap.Int("available", available),
		)
		return &InsufficientStockError{
			ProductID:   item.ProductID,
			ProductName: name,
			Requested:   item.Quantity,
			Available:   available,
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (external_id, user_id, total, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		o.ExternalID,
		o.UserID,
		o.Total,
		o.Status,
		o.StartDate,
		o.EndDate,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity, image_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			o.ID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			item.ImageURL,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order placed", zap.Uint("order_id", o.ID))
	return nil
}

func (r *repository) FetchOrders(ctx context.Context, userID *uint) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "FetchOrders"))

	query := `
		SELECT id, external_id, user_id, total, status, start_date, end_date, created_at, updated_at
		FROM orders
	`
	args := []any{}
	if userID != nil {
		query += " WHERE user_id = $1"
		args = append(args, *userID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	var ids []int64
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.ExternalID, &o.UserID, &o.Total, &o.Status,
			&o.StartDate, &o.EndDate, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
		ids = append(ids, int64(o.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, nil
}

func (r *repository) fetchItems(ctx context.Context, orderIDs []int64) (map[uint][]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity, image_url
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uint][]Item)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.ImageURL); err != nil {
			return nil, err
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.external_id, o.user_id, u.email, o.total, o.status,
		       o.start_date, o.end_date, o.created_at, o.updated_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, orderID).Scan(
		&o.ID, &o.ExternalID, &o.UserID, &o.UserEmail, &o.Total, &o.Status,
		&o.StartDate, &o.EndDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.fetchItems(ctx, []int64{int64(o.ID)})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	return &o, nil
}

func (r *repository) CancelOrderTx(ctx context.Context, orderID, userID uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelOrderTx"),
		zap.Uint("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var o Order
	err = tx.QueryRowContext(ctx, `
		SELECT id, external_id, user_id, total, status, start_date, end_date, created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, orderID, userID).Scan(
		&o.ID, &o.ExternalID, &o.UserID, &o.Total, &o.Status,
		&o.StartDate, &o.EndDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity, image_url
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.ImageURL); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Restore stock. Products that no longer exist are skipped silently;
	// soft-deleted products get their quantity back but stay Inactive.
	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity + $1,
			    status = CASE WHEN deleted_at IS NULL AND quantity + $1 > 0 THEN 'Active' ELSE status END,
			    updated_at = NOW()
			WHERE id = $2
		`, it.Quantity, it.ProductID)
		if err != nil {
			return nil, err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			log.Warn("restock skipped, product gone", zap.Uint("product_id", it.ProductID))
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, StatusCancelled, o.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cancel transaction", zap.Error(err))
		return nil, err
	}

	committed = true
	o.Status = StatusCancelled
	log.Info("order cancelled", zap.Uint("order_id", o.ID))
	return &o, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uint, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, orderID,
	)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) DeleteOrder(ctx context.Context, orderID uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
