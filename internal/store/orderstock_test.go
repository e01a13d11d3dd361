package store

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiendaviva/tienda/internal/domain"
)

// fakeProductRepository keeps products in memory and can fail on demand
type fakeProductRepository struct {
	products     map[int64]*domain.Product
	failVariants map[int64]bool
	failBase     map[int64]bool
	variantSaves int
	baseSaves    int
}

func newFakeRepo(products ...*domain.Product) *fakeProductRepository {
	r := &fakeProductRepository{
		products:     map[int64]*domain.Product{},
		failVariants: map[int64]bool{},
		failBase:     map[int64]bool{},
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepository) FetchProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepository) SaveProductVariants(_ context.Context, id int64, variants domain.VariantList) error {
	if r.failVariants[id] {
		return errors.New("write failed")
	}
	r.variantSaves++
	r.products[id].Variants = variants
	return nil
}

func (r *fakeProductRepository) SaveProductBaseStock(_ context.Context, id int64, stock int) error {
	if r.failBase[id] {
		return errors.New("write failed")
	}
	r.baseSaves++
	r.products[id].BaseStock = stock
	return nil
}

func lineItem(p *domain.Product, qty int, sel map[string]domain.VariantOption) domain.OrderItem {
	return domain.OrderItem{
		ProductID:        p.ID,
		Name:             p.Name,
		Price:            p.Price,
		Quantity:         qty,
		SelectedVariants: sel,
	}
}

func TestVerifyOrderStockInsufficient(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "P", BaseStock: 2}
	proc := NewOrderStockProcessor(newFakeRepo(p))

	check := proc.VerifyOrderStock(context.Background(), []domain.OrderItem{lineItem(p, 3, nil)})
	assert.False(t, check.IsValid)
	require.Len(t, check.Errors, 1)
	assert.Equal(t, "P: Solicitado 3, disponible 2", check.Errors[0])
}

func TestVerifyOrderStockLowStockWarning(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "P", BaseStock: 2}
	proc := NewOrderStockProcessor(newFakeRepo(p))

	check := proc.VerifyOrderStock(context.Background(), []domain.OrderItem{lineItem(p, 2, nil)})
	assert.True(t, check.IsValid)
	assert.Empty(t, check.Errors)
	require.Len(t, check.Warnings, 1)
	assert.Equal(t, "P: Quedan 2 disponibles", check.Warnings[0])
}

func TestVerifyOrderStockUsesCombinationForSelections(t *testing.T) {
	p := remeraConVariantes()
	proc := NewOrderStockProcessor(newFakeRepo(p))

	sel := map[string]domain.VariantOption{
		"Talle": {Value: "S"}, // stock 3 gates the combination
		"Color": {Value: "roja"},
	}
	check := proc.VerifyOrderStock(context.Background(), []domain.OrderItem{lineItem(p, 4, sel)})
	assert.False(t, check.IsValid)
	require.Len(t, check.Errors, 1)
	assert.Equal(t, "Remera: Solicitado 4, disponible 3", check.Errors[0])
}

func TestVerifyOrderStockAccumulatesAllProblems(t *testing.T) {
	p1 := &domain.Product{ID: 1, Name: "Uno", BaseStock: 0}
	p2 := &domain.Product{ID: 2, Name: "Dos", BaseStock: 10}
	missing := &domain.Product{ID: 99, Name: "Fantasma"}
	proc := NewOrderStockProcessor(newFakeRepo(p1, p2))

	check := proc.VerifyOrderStock(context.Background(), []domain.OrderItem{
		lineItem(p1, 1, nil),
		lineItem(p2, 1, nil),
		lineItem(missing, 1, nil),
	})
	assert.False(t, check.IsValid)
	assert.Len(t, check.Errors, 2)
	assert.Contains(t, check.Errors, "Uno: Solicitado 1, disponible 0")
	assert.Contains(t, check.Errors, "Fantasma: Producto no encontrado")
}

func TestVerifyOrderStockIsReadOnly(t *testing.T) {
	repo := newFakeRepo(&domain.Product{ID: 1, Name: "P", BaseStock: 10})
	proc := NewOrderStockProcessor(repo)

	for i := 0; i < 3; i++ {
		proc.VerifyOrderStock(context.Background(), []domain.OrderItem{
			lineItem(repo.products[1], 1, nil),
		})
	}
	assert.Zero(t, repo.variantSaves)
	assert.Zero(t, repo.baseSaves)
	assert.Equal(t, 10, repo.products[1].BaseStock)
}

func TestReduceProductStockClampsAtZero(t *testing.T) {
	p := &domain.Product{
		ID:   1,
		Name: "Remera",
		Variants: domain.VariantList{
			{Name: "Talle", Options: []domain.VariantOption{{Label: "S", Value: "S", Stock: 1}}},
		},
	}
	repo := newFakeRepo(p)
	proc := NewOrderStockProcessor(repo)

	ok := proc.ReduceProductStock(context.Background(),
		lineItem(p, 5, map[string]domain.VariantOption{"Talle": {Value: "S"}}))
	require.True(t, ok)
	assert.Equal(t, 0, repo.products[1].Variants[0].Options[0].Stock)
}

func TestReduceProductStockOnlyTouchesMatchedOptions(t *testing.T) {
	p := remeraConVariantes()
	repo := newFakeRepo(p)
	proc := NewOrderStockProcessor(repo)

	sel := map[string]domain.VariantOption{
		"Talle": {Value: "S"},
		"Color": {Value: "negra"},
	}
	require.True(t, proc.ReduceProductStock(context.Background(), lineItem(p, 2, sel)))

	got := repo.products[p.ID].Variants
	assert.Equal(t, 1, got[0].Options[0].Stock)  // S: 3 -> 1
	assert.Equal(t, 0, got[0].Options[1].Stock)  // M untouched
	assert.Equal(t, 10, got[0].Options[2].Stock) // L untouched
	assert.Equal(t, 5, got[1].Options[0].Stock)  // roja untouched
	assert.Equal(t, 0, got[1].Options[1].Stock)  // negra: 2 -> 0
	assert.Equal(t, 1, repo.variantSaves, "whole structure written once")
}

func TestReduceProductStockBaseCounter(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "P", BaseStock: 4}
	repo := newFakeRepo(p)
	proc := NewOrderStockProcessor(repo)

	require.True(t, proc.ReduceProductStock(context.Background(), lineItem(p, 3, nil)))
	assert.Equal(t, 1, repo.products[1].BaseStock)
	assert.Equal(t, 1, repo.baseSaves)
	assert.Zero(t, repo.variantSaves)
}

func TestProcessOrderStockNoRollbackOnPartialFailure(t *testing.T) {
	p1 := &domain.Product{ID: 1, Name: "Uno", BaseStock: 5}
	p2 := &domain.Product{ID: 2, Name: "Dos", BaseStock: 5}
	repo := newFakeRepo(p1, p2)
	repo.failBase[2] = true
	proc := NewOrderStockProcessor(repo)

	ok := proc.ProcessOrderStock(context.Background(), []domain.OrderItem{
		lineItem(p1, 2, nil),
		lineItem(p2, 2, nil),
	})
	assert.False(t, ok)
	// the first reduction stays committed, there is no compensation
	assert.Equal(t, 3, repo.products[1].BaseStock)
	assert.Equal(t, 5, repo.products[2].BaseStock)
}

func TestProcessOrderStockAllSucceed(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "P", BaseStock: 5}
	repo := newFakeRepo(p)
	proc := NewOrderStockProcessor(repo)

	ok := proc.ProcessOrderStock(context.Background(), []domain.OrderItem{
		lineItem(p, 1, nil),
		lineItem(p, 2, nil),
	})
	assert.True(t, ok)
	assert.Equal(t, 2, repo.products[1].BaseStock)
}
