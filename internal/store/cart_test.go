package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiendaviva/tienda/internal/domain"
)

// memPersistence records saves in memory for the tests
type memPersistence struct {
	raw   []RawCartItem
	saved [][]domain.CartItem
	err   error
}

func (m *memPersistence) Load() ([]RawCartItem, error) {
	return m.raw, m.err
}

func (m *memPersistence) Save(items []domain.CartItem) error {
	snapshot := make([]domain.CartItem, len(items))
	copy(snapshot, items)
	m.saved = append(m.saved, snapshot)
	return nil
}

func remera() *domain.Product {
	return &domain.Product{ID: 100, Name: "Remera", Price: 1500}
}

func talle(v string) map[string]domain.VariantOption {
	return map[string]domain.VariantOption{"Talle": {Label: v, Value: v}}
}

func TestAddToCartMergesSameSelection(t *testing.T) {
	cart := NewCart(&memPersistence{})

	_, err := cart.AddToCart(remera(), 1, talle("S"), "roja")
	require.NoError(t, err)
	_, err = cart.AddToCart(remera(), 2, talle("S"), "roja")
	require.NoError(t, err)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	// A different size is a different purchasable thing
	_, err = cart.AddToCart(remera(), 1, talle("M"), "roja")
	require.NoError(t, err)
	require.Len(t, cart.Items(), 2)
}

func TestAddToCartDistinctColors(t *testing.T) {
	cart := NewCart(&memPersistence{})

	_, _ = cart.AddToCart(remera(), 1, talle("S"), "roja")
	_, _ = cart.AddToCart(remera(), 1, talle("S"), "azul")

	require.Len(t, cart.Items(), 2)
}

func TestAddToCartValidation(t *testing.T) {
	cart := NewCart(&memPersistence{})

	_, err := cart.AddToCart(nil, 1, nil, nil)
	assert.ErrorIs(t, err, ErrNilProduct)

	_, err = cart.AddToCart(remera(), 0, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, cart.Items())
}

func TestAddToCartFreshCartIDs(t *testing.T) {
	cart := NewCart(&memPersistence{})

	first, _ := cart.AddToCart(remera(), 1, talle("S"), nil)
	cart.RemoveFromCart(first.CartID)
	second, _ := cart.AddToCart(remera(), 1, talle("S"), nil)

	assert.NotEqual(t, first.CartID, second.CartID)
}

func TestUpdateQuantityRemovesAtZeroOrBelow(t *testing.T) {
	for _, qty := range []int{0, -5} {
		cart := NewCart(&memPersistence{})
		item, _ := cart.AddToCart(remera(), 2, nil, nil)

		cart.UpdateQuantity(item.CartID, qty)
		assert.Empty(t, cart.Items(), "quantity %d must remove the entry", qty)
	}
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	cart := NewCart(&memPersistence{})
	item, _ := cart.AddToCart(remera(), 2, nil, nil)

	cart.UpdateQuantity(item.CartID, 7)
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	cart := NewCart(&memPersistence{})
	_, _ = cart.AddToCart(remera(), 1, nil, nil)

	cart.RemoveFromCart("no-such-id")
	assert.Len(t, cart.Items(), 1)
}

func TestTotals(t *testing.T) {
	cart := NewCart(&memPersistence{})
	_, _ = cart.AddToCart(remera(), 2, talle("S"), nil)
	_, _ = cart.AddToCart(&domain.Product{ID: 200, Name: "Buzo", Price: 4000}, 1, nil, nil)

	assert.Equal(t, 3, cart.TotalItems())
	assert.InDelta(t, 2*1500+4000, cart.TotalPrice(), 0.001)
}

func TestEveryMutationPersists(t *testing.T) {
	persist := &memPersistence{}
	cart := NewCart(persist)

	item, _ := cart.AddToCart(remera(), 1, nil, nil)
	cart.UpdateQuantity(item.CartID, 3)
	cart.RemoveFromCart(item.CartID)
	cart.ClearCart()

	assert.Len(t, persist.saved, 4)
	assert.Empty(t, persist.saved[len(persist.saved)-1])
}

func TestRestoreRepairsLegacyColorObjects(t *testing.T) {
	persist := &memPersistence{raw: []RawCartItem{
		{
			CartID:        "legacy-1",
			ProductID:     100,
			Name:          "Remera",
			Quantity:      1,
			SelectedColor: map[string]interface{}{"name": "Rojo", "value": "#ff0000"},
		},
		{
			CartID:        "legacy-2",
			ProductID:     100,
			Name:          "Remera",
			Quantity:      2,
			SelectedColor: "#00ff00",
		},
	}}
	cart := NewCart(persist)
	cart.Restore()

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "#ff0000", items[0].SelectedColor)
	assert.Equal(t, "#00ff00", items[1].SelectedColor)
}

func TestRestoreMalformedPayloadYieldsEmptyCart(t *testing.T) {
	persist := &memPersistence{err: assert.AnError}
	cart := NewCart(persist)
	cart.Restore()

	assert.Empty(t, cart.Items())
}
