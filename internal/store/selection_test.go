package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tiendaviva/tienda/internal/domain"
)

func TestColorKey(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   string
		wantOK bool
	}{
		{"plain string", "#ff0000", "#ff0000", true},
		{"empty string", "", "", false},
		{"color struct", domain.Color{Name: "Rojo", Value: "#f00"}, "#f00", true},
		{"legacy map value", map[string]interface{}{"value": "#00ff00"}, "#00ff00", true},
		{"legacy map hex fallback", map[string]interface{}{"hex": "#0000ff"}, "#0000ff", true},
		{"legacy map empty", map[string]interface{}{"name": "Azul"}, "", false},
		{"nil", nil, "", false},
		{"number", 42, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ColorKey(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionKeyEmpty(t *testing.T) {
	assert.Equal(t, "no-variants-no-color", SelectionKey(nil, nil))
	assert.Equal(t, "no-variants-color:#fff", SelectionKey(nil, "#fff"))
}

func TestSelectionKeyShape(t *testing.T) {
	sel := map[string]domain.VariantOption{
		"Talle": {Label: "S", Value: "S"},
		"Color": {Label: "Roja", Value: "roja"},
	}
	key := SelectionKey(sel, "#ff0000")
	assert.Equal(t, "Color:roja|Talle:S-color:#ff0000", key)
}

func TestSelectionKeyOrderIndependence(t *testing.T) {
	// Maps iterate in random order; building the same selection many times
	// must always derive the same key.
	build := func() map[string]domain.VariantOption {
		return map[string]domain.VariantOption{
			"Talle":    {Value: "M"},
			"Color":    {Value: "azul"},
			"Material": {Value: "algodon"},
			"Estampa":  {Value: "lisa"},
		}
	}
	want := SelectionKey(build(), "negro")
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, SelectionKey(build(), "negro"))
	}
}

func TestSelectionKeyNormalizedVsObjectColor(t *testing.T) {
	sel := map[string]domain.VariantOption{"Talle": {Value: "S"}}
	asString := SelectionKey(sel, "#abc")
	asObject := SelectionKey(sel, map[string]interface{}{"value": "#abc"})
	assert.Equal(t, asString, asObject)
}
