package store

import (
	"github.com/tiendaviva/tienda/internal/domain"
)

// TotalStock returns the aggregate stock figure for a product: the base
// counter when it has no variants, otherwise the sum of every option's
// stock across every dimension.
//
// This is a display aggregate only. It overstates availability whenever
// options differ in stock, so it must never authorize a per-combination
// sale; use CombinationStock for that.
func TotalStock(product *domain.Product) int {
	if product == nil {
		return 0
	}
	if !product.HasVariants() {
		return product.BaseStock
	}
	return variantsTotal(product.Variants)
}

func variantsTotal(variants []domain.Variant) int {
	total := 0
	for _, v := range variants {
		for _, opt := range v.Options {
			total += opt.Stock
		}
	}
	return total
}

// MatchOption locates the option inside a variant that corresponds to a
// cart selection: first by value, then by label, then by full equality.
func MatchOption(variant domain.Variant, selected domain.VariantOption) (domain.VariantOption, bool) {
	if selected.Value != "" {
		for _, opt := range variant.Options {
			if opt.Value == selected.Value {
				return opt, true
			}
		}
	}
	if selected.Label != "" {
		for _, opt := range variant.Options {
			if opt.Label == selected.Label {
				return opt, true
			}
		}
	}
	for _, opt := range variant.Options {
		if opt == selected {
			return opt, true
		}
	}
	return domain.VariantOption{}, false
}

// CombinationStock computes how many units of a specific option combination
// can be sold. Each selected dimension acts as an independent gate: the
// result is the minimum stock across the matched options, not a cartesian
// cell. A dimension whose selection matches no option is skipped rather
// than failing the lookup.
//
// With an empty selection (or when nothing matches) the aggregate variants
// total is returned. Whether the per-dimension minimum was meant as a
// placeholder for a true per-SKU table is unknown; the behavior here
// preserves it as found.
func CombinationStock(variants []domain.Variant, selected map[string]domain.VariantOption) int {
	if len(selected) == 0 {
		return variantsTotal(variants)
	}
	min := -1
	for _, v := range variants {
		sel, picked := selected[v.Name]
		if !picked {
			continue
		}
		opt, ok := MatchOption(v, sel)
		if !ok {
			continue
		}
		if min < 0 || opt.Stock < min {
			min = opt.Stock
		}
	}
	if min < 0 {
		return variantsTotal(variants)
	}
	return min
}

// IsCombinationAvailable reports whether at least one unit of the
// combination can be sold
func IsCombinationAvailable(variants []domain.Variant, selected map[string]domain.VariantOption) bool {
	return CombinationStock(variants, selected) > 0
}

// OptionsInStock filters a variant's options down to the ones a shopper can
// still choose
func OptionsInStock(variant domain.Variant) []domain.VariantOption {
	out := make([]domain.VariantOption, 0, len(variant.Options))
	for _, opt := range variant.Options {
		if opt.Stock > 0 {
			out = append(out, opt)
		}
	}
	return out
}

// AvailableOptionsForVariant resolves a variant by name and returns its
// in-stock options
func AvailableOptionsForVariant(variants []domain.Variant, variantName string) []domain.VariantOption {
	for _, v := range variants {
		if v.Name == variantName {
			return OptionsInStock(v)
		}
	}
	return nil
}
