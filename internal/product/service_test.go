package product

import (
	"context"
	"testing"

	"camrent-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetList(ctx context.Context, opts QueryOptions) ([]Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input NewProduct) (*Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uint, input UpdateProduct) (*Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		input := NewProduct{Name: "Canon EOS R6", Category: "Mirrorless", PricePerDay: 45, Quantity: 3}
		repo.On("Create", ctx, input).
			Return(&Product{ID: 1, Name: "Canon EOS R6", Quantity: 3, Status: StatusActive}, nil)

		p, err := svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, uint(1), p.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Empty name", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(ctx, NewProduct{Name: "  ", PricePerDay: 10})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("Negative price", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(ctx, NewProduct{Name: "Tripod", PricePerDay: -1})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("Negative quantity", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Create(ctx, NewProduct{Name: "Tripod", PricePerDay: 5, Quantity: -2})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		qty := 10
		input := UpdateProduct{Quantity: &qty}
		repo.On("Update", ctx, uint(1), input).
			Return(&Product{ID: 1, Quantity: 10, Status: StatusActive}, nil)

		p, err := svc.Update(ctx, 1, input)
		require.NoError(t, err)
		assert.Equal(t, 10, p.Quantity)
	})

	t.Run("No fields", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Update(ctx, 1, UpdateProduct{})
		assert.ErrorIs(t, err, ErrNoFieldsToSet)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Update(ctx, 1, UpdateProduct{Name: utils.StrPtr("")})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		name := "Sony A7 IV"
		repo.On("Update", ctx, uint(99), UpdateProduct{Name: &name}).
			Return(nil, ErrProductNotFound)

		_, err := svc.Update(ctx, 99, UpdateProduct{Name: &name})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_GetList(t *testing.T) {
	ctx := context.Background()

	t.Run("Pagination normalized", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetList", ctx, QueryOptions{Page: 1, Limit: 20, OnlyActive: true}).
			Return([]Product{{ID: 1}}, nil)

		products, err := svc.GetList(ctx, QueryOptions{Page: 0, Limit: 0, OnlyActive: true})
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("Limit clamped", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetList", ctx, QueryOptions{Page: 1, Limit: 100}).
			Return([]Product{}, nil)

		_, err := svc.GetList(ctx, QueryOptions{Page: 1, Limit: 500})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
