package store

import (
	"context"
	"fmt"

	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultLowStockThreshold is the remaining-units level that turns a
// verification result into a warning
const DefaultLowStockThreshold = 5

// ProductRepository is the narrow contract against the authoritative
// product record. Variant stock is always written back as the entire
// structure, never as a per-field patch.
type ProductRepository interface {
	FetchProduct(ctx context.Context, id int64) (*domain.Product, error)
	SaveProductVariants(ctx context.Context, id int64, variants domain.VariantList) error
	SaveProductBaseStock(ctx context.Context, id int64, stock int) error
}

// StockCheck is the outcome of a read-only order verification. Errors and
// warnings accumulate per line item so a caller can display every problem
// at once.
type StockCheck struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OrderStockProcessor bridges the optimistic client-side cart to the
// authoritative stock record when a sale is confirmed.
//
// Verification and reduction are independent check-then-act cycles with no
// locking or version tokens: two concurrent checkouts can both pass
// verification on the last unit and both reduce, and because reduction
// clamps at zero the oversell is masked rather than loud. Kept as found.
type OrderStockProcessor struct {
	repo          ProductRepository
	warnThreshold int
}

func NewOrderStockProcessor(repo ProductRepository) *OrderStockProcessor {
	return &OrderStockProcessor{repo: repo, warnThreshold: DefaultLowStockThreshold}
}

// WithWarnThreshold overrides the low-stock warning level
func (p *OrderStockProcessor) WithWarnThreshold(n int) *OrderStockProcessor {
	if n > 0 {
		p.warnThreshold = n
	}
	return p
}

// VerifyOrderStock re-fetches every line item's product and compares the
// requested quantity against what is actually available. It never writes
// and is safe to call repeatedly.
func (p *OrderStockProcessor) VerifyOrderStock(ctx context.Context, items []domain.OrderItem) StockCheck {
	check := StockCheck{IsValid: true, Errors: []string{}, Warnings: []string{}}

	for _, item := range items {
		product, err := p.repo.FetchProduct(ctx, item.ProductID)
		if err != nil {
			check.Errors = append(check.Errors, fmt.Sprintf("%s: Producto no encontrado", item.Name))
			continue
		}

		available := p.availableFor(product, item)
		if item.Quantity > available {
			check.Errors = append(check.Errors,
				fmt.Sprintf("%s: Solicitado %d, disponible %d", product.Name, item.Quantity, available))
			continue
		}
		if available > 0 && available <= p.warnThreshold {
			check.Warnings = append(check.Warnings,
				fmt.Sprintf("%s: Quedan %d disponibles", product.Name, available))
		}
	}

	check.IsValid = len(check.Errors) == 0
	return check
}

func (p *OrderStockProcessor) availableFor(product *domain.Product, item domain.OrderItem) int {
	if product.HasVariants() && len(item.SelectedVariants) > 0 {
		return CombinationStock(product.Variants, item.SelectedVariants)
	}
	return TotalStock(product)
}

// ReduceProductStock decrements the authoritative stock for a single line
// item, clamping at zero. With a variant selection the matched option in
// every selected dimension is reduced and the whole variants structure is
// persisted; without one only the base counter is written. Returns false
// when the fetch or the write fails; the failure stays contained to this
// item.
func (p *OrderStockProcessor) ReduceProductStock(ctx context.Context, item domain.OrderItem) bool {
	product, err := p.repo.FetchProduct(ctx, item.ProductID)
	if err != nil {
		zap.L().Error("stock reduction: product fetch failed",
			zap.Int64("product_id", item.ProductID), zap.Error(err))
		return false
	}

	if product.HasVariants() && len(item.SelectedVariants) > 0 {
		updated := reduceVariantStock(product.Variants, item.SelectedVariants, item.Quantity)
		if err := p.repo.SaveProductVariants(ctx, product.ID, updated); err != nil {
			zap.L().Error("stock reduction: variants write failed",
				zap.Int64("product_id", product.ID), zap.Error(err))
			return false
		}
	} else {
		next := product.BaseStock - item.Quantity
		if next < 0 {
			metrics.Counter(metrics.OversellClamps)
			next = 0
		}
		if err := p.repo.SaveProductBaseStock(ctx, product.ID, next); err != nil {
			zap.L().Error("stock reduction: base stock write failed",
				zap.Int64("product_id", product.ID), zap.Error(err))
			return false
		}
	}

	metrics.Counter(metrics.StockReductions)
	return true
}

// ProcessOrderStock commits the stock reduction for every line item of a
// confirmed sale. Items are processed independently; a failure partway
// through leaves earlier reductions in place, there is no rollback. The
// single boolean reports whether every item succeeded.
func (p *OrderStockProcessor) ProcessOrderStock(ctx context.Context, items []domain.OrderItem) bool {
	allOK := true
	for _, item := range items {
		if !p.ReduceProductStock(ctx, item) {
			allOK = false
		}
	}
	return allOK
}

// reduceVariantStock returns a copy of the variants structure with the
// matched option of each selected dimension decremented by quantity,
// clamped at zero. Unselected dimensions and unmatched options are left
// untouched.
func reduceVariantStock(variants domain.VariantList, selected map[string]domain.VariantOption, quantity int) domain.VariantList {
	updated := make(domain.VariantList, len(variants))
	for i, v := range variants {
		uv := v
		uv.Options = make([]domain.VariantOption, len(v.Options))
		copy(uv.Options, v.Options)

		if sel, picked := selected[v.Name]; picked {
			if matched, ok := MatchOption(v, sel); ok {
				for j := range uv.Options {
					if uv.Options[j] == matched {
						next := uv.Options[j].Stock - quantity
						if next < 0 {
							metrics.Counter(metrics.OversellClamps)
							next = 0
						}
						uv.Options[j].Stock = next
						break
					}
				}
			}
		}
		updated[i] = uv
	}
	return updated
}
