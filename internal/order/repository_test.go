package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	decrementStockQuery = `UPDATE products\s+SET quantity = quantity - \$1,\s+status = CASE WHEN quantity - \$1 <= 0 THEN 'Inactive' ELSE status END,\s+updated_at = NOW\(\)\s+WHERE id = \$2 AND deleted_at IS NULL AND quantity >= \$1`
	restockQuery        = `UPDATE products\s+SET quantity = quantity \+ \$1,\s+status = CASE WHEN deleted_at IS NULL AND quantity \+ \$1 > 0 THEN 'Active' ELSE status END,\s+updated_at = NOW\(\)\s+WHERE id = \$2`
)

func TestRepository_CreateOrderTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		o := &Order{
			ExternalID: uuid.New(),
			UserID:     1,
			Total:      90,
			Status:     StatusPending,
			Items: []Item{
				{ProductID: 10, Name: "Canon EOS R6", Price: 45, Quantity: 2},
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec(decrementStockQuery).
			WithArgs(2, uint(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO orders \(external_id, user_id, total, status, start_date, end_date\)`).
			WithArgs(o.ExternalID, uint(1), 90.0, StatusPending, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(7, time.Now(), time.Now()))
		mock.ExpectQuery(`INSERT INTO order_items \(order_id, product_id, name, price, quantity, image_url\)`).
			WithArgs(uint(7), uint(10), "Canon EOS R6", 45.0, 2, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateOrderTx(ctx, o))
		assert.Equal(t, uint(7), o.ID)
		assert.Equal(t, uint(7), o.Items[0].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient stock rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		o := &Order{
			ExternalID: uuid.New(),
			UserID:     1,
			Status:     StatusPending,
			Items:      []Item{{ProductID: 10, Name: "Canon EOS R6", Price: 45, Quantity: 3}},
		}

		mock.ExpectBegin()
		mock.ExpectExec(decrementStockQuery).
			WithArgs(3, uint(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT name, quantity FROM products WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs(uint(10)).
			WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Canon EOS R6", 2))
		mock.ExpectRollback()

		err = repo.CreateOrderTx(ctx, o)

		var ise *InsufficientStockError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, "Canon EOS R6", ise.ProductName)
		assert.Equal(t, 3, ise.Requested)
		assert.Equal(t, 2, ise.Available)
		assert.Contains(t, err.Error(), "Insufficient quantity")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing product rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		o := &Order{
			ExternalID: uuid.New(),
			UserID:     1,
			Status:     StatusPending,
			Items:      []Item{{ProductID: 404, Name: "Ghost", Quantity: 1}},
		}

		mock.ExpectBegin()
		mock.ExpectExec(decrementStockQuery).
			WithArgs(1, uint(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT name, quantity FROM products WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs(uint(404)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err = repo.CreateOrderTx(ctx, o)
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Later failure rolls back earlier decrements", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		o := &Order{
			ExternalID: uuid.New(),
			UserID:     1,
			Status:     StatusPending,
			Items: []Item{
				{ProductID: 10, Name: "Canon EOS R6", Quantity: 1},
				{ProductID: 11, Name: "Sigma 35mm", Quantity: 4},
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec(decrementStockQuery).
			WithArgs(1, uint(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(decrementStockQuery).
			WithArgs(4, uint(11)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT name, quantity FROM products WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs(uint(11)).
			WillReturnRows(sqlmock.NewRows([]string{"name", "quantity"}).AddRow("Sigma 35mm", 1))
		mock.ExpectRollback()

		err = repo.CreateOrderTx(ctx, o)

		var ise *InsufficientStockError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, uint(11), ise.ProductID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_CancelOrderTx(t *testing.T) {
	ctx := context.Background()

	selectOrder := `SELECT id, external_id, user_id, total, status, start_date, end_date, created_at, updated_at\s+FROM orders\s+WHERE id = \$1 AND user_id = \$2\s+FOR UPDATE`

	orderRow := func(status Status) *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "external_id", "user_id", "total", "status",
			"start_date", "end_date", "created_at", "updated_at",
		}).AddRow(5, uuid.New(), 1, 225.0, status, nil, nil, time.Now(), time.Now())
	}

	t.Run("Success restores stock", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(selectOrder).
			WithArgs(uint(5), uint(1)).
			WillReturnRows(orderRow(StatusPending))
		mock.ExpectQuery(`SELECT id, order_id, product_id, name, price, quantity, image_url\s+FROM order_items\s+WHERE order_id = \$1`).
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "price", "quantity", "image_url"}).
				AddRow(1, 5, 10, "Canon EOS R6", 45.0, 5, nil))
		mock.ExpectExec(restockQuery).
			WithArgs(5, uint(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(StatusCancelled, uint(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.CancelOrderTx(ctx, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Len(t, o.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already cancelled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(selectOrder).
			WithArgs(uint(5), uint(1)).
			WillReturnRows(orderRow(StatusCancelled))
		mock.ExpectRollback()

		_, err = repo.CancelOrderTx(ctx, 5, 1)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found or not owned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(selectOrder).
			WithArgs(uint(5), uint(2)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = repo.CancelOrderTx(ctx, 5, 2)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Vanished product skipped silently", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(selectOrder).
			WithArgs(uint(5), uint(1)).
			WillReturnRows(orderRow(StatusPaid))
		mock.ExpectQuery(`SELECT id, order_id, product_id, name, price, quantity, image_url`).
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "price", "quantity", "image_url"}).
				AddRow(1, 5, 404, "Gone", 10.0, 2, nil))
		mock.ExpectExec(restockQuery).
			WithArgs(2, uint(404)).
			WillReturnResult(sqlmock.NewResult(0, 0)) // product hard-deleted
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(StatusCancelled, uint(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.CancelOrderTx(ctx, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
	})
}

func TestRepository_FetchOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	orderCols := []string{"id", "external_id", "user_id", "total", "status", "start_date", "end_date", "created_at", "updated_at"}
	itemCols := []string{"id", "order_id", "product_id", "name", "price", "quantity", "image_url"}

	t.Run("User scope newest first with items", func(t *testing.T) {
		userID := uint(1)

		mock.ExpectQuery(`SELECT .* FROM orders\s+WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(2, uuid.New(), 1, 50.0, "pending", nil, nil, time.Now(), time.Now()).
				AddRow(1, uuid.New(), 1, 90.0, "completed", nil, nil, time.Now().Add(-time.Hour), time.Now()))

		mock.ExpectQuery(`SELECT id, order_id, product_id, name, price, quantity, image_url\s+FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
			WithArgs(pq.Array([]int64{2, 1})).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow(1, 1, 10, "Canon EOS R6", 45.0, 2, nil).
				AddRow(2, 2, 11, "Sigma 35mm", 25.0, 2, nil))

		orders, err := repo.FetchOrders(ctx, &userID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, uint(2), orders[0].ID)
		assert.Equal(t, "Sigma 35mm", orders[0].Items[0].Name)
		assert.Equal(t, "Canon EOS R6", orders[1].Items[0].Name)
	})

	t.Run("Admin scope unfiltered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders\s+ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows(orderCols))

		orders, err := repo.FetchOrders(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders`).
			WillReturnError(errors.New("db error"))

		_, err := repo.FetchOrders(ctx, nil)
		assert.Error(t, err)
	})
}

func TestRepository_GetOrderDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success with user email", func(t *testing.T) {
		mock.ExpectQuery(`SELECT o.id, o.external_id, o.user_id, u.email, o.total, o.status,\s+o.start_date, o.end_date, o.created_at, o.updated_at\s+FROM orders o\s+JOIN users u ON u.id = o.user_id\s+WHERE o.id = \$1`).
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "external_id", "user_id", "email", "total", "status",
				"start_date", "end_date", "created_at", "updated_at",
			}).AddRow(5, uuid.New(), 1, "renter@example.com", 90.0, "pending", nil, nil, time.Now(), time.Now()))

		mock.ExpectQuery(`SELECT id, order_id, product_id, name, price, quantity, image_url`).
			WithArgs(pq.Array([]int64{5})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "price", "quantity", "image_url"}))

		o, err := repo.GetOrderDetail(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "renter@example.com", o.UserEmail)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT o.id, o.external_id`).
			WithArgs(uint(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetOrderDetail(ctx, 99)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_UpdateOrderStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(StatusShipped, uint(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateOrderStatus(ctx, 5, StatusShipped))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(StatusShipped, uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateOrderStatus(ctx, 99, StatusShipped), ErrOrderNotFound)
	})
}

func TestRepository_DeleteOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs(uint(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteOrder(ctx, 5))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
			WithArgs(uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteOrder(ctx, 99), ErrOrderNotFound)
	})
}
