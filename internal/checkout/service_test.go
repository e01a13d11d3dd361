package checkout

import (
	"context"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/store"
)

type memOrderRepository struct {
	orders map[int64]*domain.Order
}

func newMemOrderRepo() *memOrderRepository {
	return &memOrderRepository{orders: map[int64]*domain.Order{}}
}

func (r *memOrderRepository) Insert(_ context.Context, order *domain.Order) error {
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepository) UpdateStatus(_ context.Context, id int64, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return errors.New("record not found")
	}
	o.Status = status
	return nil
}

type memProductRepository struct {
	products map[int64]*domain.Product
	fetches  int
}

func (r *memProductRepository) FetchProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepository) SaveProductVariants(_ context.Context, id int64, variants domain.VariantList) error {
	r.products[id].Variants = variants
	return nil
}

func (r *memProductRepository) SaveProductBaseStock(_ context.Context, id int64, stock int) error {
	r.products[id].BaseStock = stock
	return nil
}

func newTestService() (*Service, *memOrderRepository, *memProductRepository) {
	orders := newMemOrderRepo()
	products := &memProductRepository{products: map[int64]*domain.Product{
		1: {ID: 1, Name: "Remera", Price: 1500, BaseStock: 10},
	}}
	svc := NewService(orders, store.NewOrderStockProcessor(products), EventBus.New())
	return svc, orders, products
}

func pedido(qty int) *domain.Order {
	return &domain.Order{
		CustomerName: "Ana",
		Items: domain.OrderItemList{
			{ProductID: 1, Name: "Remera", Price: 1500, Quantity: qty},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	svc, orders, _ := newTestService()

	created, err := svc.CreateOrder(context.Background(), pedido(2))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.OrderNumber)
	assert.Equal(t, domain.OrderStatusPendingPayment, created.Status)
	assert.InDelta(t, 3000, created.Total, 0.001)
	assert.Len(t, orders.orders, 1)
}

func TestCreateOrderRejectsEmptyAndInvalid(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), &domain.Order{})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.CreateOrder(context.Background(), pedido(0))
	assert.Error(t, err)
}

func TestConfirmationReducesStockOnce(t *testing.T) {
	svc, _, products := newTestService()
	created, err := svc.CreateOrder(context.Background(), pedido(3))
	require.NoError(t, err)

	// confirmation commits the reduction
	_, err = svc.TransitionStatus(context.Background(), created.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, 7, products.products[1].BaseStock)

	// the state machine blocks a second confirmation, so no double reduce
	_, err = svc.TransitionStatus(context.Background(), created.ID, domain.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 7, products.products[1].BaseStock)

	// completing does not touch stock either
	_, err = svc.TransitionStatus(context.Background(), created.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 7, products.products[1].BaseStock)
}

func TestCancelBeforeConfirmationLeavesStockAlone(t *testing.T) {
	svc, _, products := newTestService()
	created, err := svc.CreateOrder(context.Background(), pedido(3))
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), created.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 10, products.products[1].BaseStock)

	// cancelled is terminal
	_, err = svc.TransitionStatus(context.Background(), created.ID, domain.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestVerifyStockPassthrough(t *testing.T) {
	svc, _, _ := newTestService()

	check := svc.VerifyStock(context.Background(), domain.OrderItemList{
		{ProductID: 1, Name: "Remera", Quantity: 99},
	})
	assert.False(t, check.IsValid)
	require.Len(t, check.Errors, 1)
	assert.Equal(t, "Remera: Solicitado 99, disponible 10", check.Errors[0])
}
