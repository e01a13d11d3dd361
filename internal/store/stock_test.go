package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tiendaviva/tienda/internal/domain"
)

func remeraConVariantes() *domain.Product {
	return &domain.Product{
		ID:   100,
		Name: "Remera",
		Variants: domain.VariantList{
			{
				Name: "Talle",
				Type: "size",
				Options: []domain.VariantOption{
					{Label: "S", Value: "S", Stock: 3},
					{Label: "M", Value: "M", Stock: 0},
					{Label: "L", Value: "L", Stock: 10},
				},
			},
			{
				Name: "Color",
				Type: "color",
				Options: []domain.VariantOption{
					{Label: "Roja", Value: "roja", Stock: 5},
					{Label: "Negra", Value: "negra", Stock: 2},
				},
			},
		},
	}
}

func TestTotalStock(t *testing.T) {
	assert.Equal(t, 0, TotalStock(nil))
	assert.Equal(t, 8, TotalStock(&domain.Product{BaseStock: 8}))
	// with variants the base counter is ignored and options are summed
	p := remeraConVariantes()
	p.BaseStock = 99
	assert.Equal(t, 3+0+10+5+2, TotalStock(p))
}

func TestMatchOption(t *testing.T) {
	v := remeraConVariantes().Variants[0]

	byValue, ok := MatchOption(v, domain.VariantOption{Value: "S"})
	assert.True(t, ok)
	assert.Equal(t, 3, byValue.Stock)

	byLabel, ok := MatchOption(v, domain.VariantOption{Label: "L"})
	assert.True(t, ok)
	assert.Equal(t, 10, byLabel.Stock)

	_, ok = MatchOption(v, domain.VariantOption{Value: "XXL"})
	assert.False(t, ok)
}

func TestCombinationStockIsPerDimensionMinimum(t *testing.T) {
	p := remeraConVariantes()
	sel := map[string]domain.VariantOption{
		"Talle": {Value: "S"}, // stock 3
		"Color": {Value: "roja"}, // stock 5
	}
	assert.Equal(t, 3, CombinationStock(p.Variants, sel))

	sel["Color"] = domain.VariantOption{Value: "negra"} // stock 2
	assert.Equal(t, 2, CombinationStock(p.Variants, sel))
}

func TestCombinationStockEmptySelectionFallsBackToTotal(t *testing.T) {
	p := remeraConVariantes()
	assert.Equal(t, 20, CombinationStock(p.Variants, nil))
}

func TestCombinationStockToleratesLookupMiss(t *testing.T) {
	p := remeraConVariantes()
	sel := map[string]domain.VariantOption{
		"Talle": {Value: "no-existe"}, // excluded from the minimum
		"Color": {Value: "negra"},
	}
	assert.Equal(t, 2, CombinationStock(p.Variants, sel))
}

func TestIsCombinationAvailable(t *testing.T) {
	p := remeraConVariantes()
	assert.False(t, IsCombinationAvailable(p.Variants,
		map[string]domain.VariantOption{"Talle": {Value: "M"}}))
	assert.True(t, IsCombinationAvailable(p.Variants,
		map[string]domain.VariantOption{"Talle": {Value: "L"}}))
}

func TestOptionsInStock(t *testing.T) {
	p := remeraConVariantes()
	inStock := OptionsInStock(p.Variants[0])
	labels := make([]string, 0, len(inStock))
	for _, o := range inStock {
		labels = append(labels, o.Label)
	}
	assert.Equal(t, []string{"S", "L"}, labels)
}

func TestAvailableOptionsForVariant(t *testing.T) {
	p := remeraConVariantes()
	opts := AvailableOptionsForVariant(p.Variants, "Color")
	assert.Len(t, opts, 2)
	assert.Nil(t, AvailableOptionsForVariant(p.Variants, "Material"))
}
