// Package store implements the cart and inventory core: selection-key
// derivation, the session cart with its persisted mirror, pure stock
// resolution and the order-time stock processor.
package store

import (
	"sort"
	"strings"

	"github.com/tiendaviva/tienda/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	noVariantsPart = "no-variants"
	noColorPart    = "no-color"
)

// ColorKey normalizes any stored color shape down to its plain string value.
// Strings pass through, palette entries and legacy object forms resolve to
// their value (or hex) field. ok is false when no usable value exists,
// including the empty string.
func ColorKey(color interface{}) (string, bool) {
	switch v := color.(type) {
	case string:
		return v, v != ""
	case domain.Color:
		return v.Value, v.Value != ""
	case *domain.Color:
		if v == nil {
			return "", false
		}
		return v.Value, v.Value != ""
	case map[string]interface{}:
		if s, ok := v["value"].(string); ok && s != "" {
			return s, true
		}
		if s, ok := v["hex"].(string); ok && s != "" {
			return s, true
		}
		return "", false
	case map[string]string:
		if s := v["value"]; s != "" {
			return s, true
		}
		if s := v["hex"]; s != "" {
			return s, true
		}
		return "", false
	default:
		return "", false
	}
}

// SelectionKey derives the deterministic identity of "chosen options plus
// chosen color". Cart merging and stock lookups both key on it, so it must
// be independent of the iteration order of the selection map: dimension
// names are sorted with a locale-aware collator before rendering.
//
// The shape is "<name:value|name:value|...>-<color:value>", with the
// literals "no-variants" and "no-color" filling the empty cases.
func SelectionKey(selected map[string]domain.VariantOption, color interface{}) string {
	variantPart := noVariantsPart
	if len(selected) > 0 {
		names := make([]string, 0, len(selected))
		for name := range selected {
			names = append(names, name)
		}
		cl := collate.New(language.Und)
		sort.Slice(names, func(i, j int) bool {
			return cl.CompareString(names[i], names[j]) < 0
		})
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+":"+selected[name].Value)
		}
		variantPart = strings.Join(parts, "|")
	}

	colorPart := noColorPart
	if key, ok := ColorKey(color); ok {
		colorPart = "color:" + key
	}

	return variantPart + "-" + colorPart
}
