package store

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNilProduct      = errors.New("product is required")
)

// RawCartItem is the persisted wire form of a cart entry. SelectedColor is
// kept loose because entries saved before color normalization existed may
// carry an object instead of a plain string; Load repairs them.
type RawCartItem struct {
	CartID           string                          `json:"cartId"`
	ProductID        int64                           `json:"productId,string"`
	Name             string                          `json:"name"`
	Price            float64                         `json:"price"`
	Image            string                          `json:"image,omitempty"`
	Quantity         int                             `json:"quantity"`
	SelectedVariants map[string]domain.VariantOption `json:"selectedVariants,omitempty"`
	SelectedColor    interface{}                     `json:"selectedColor,omitempty"`
}

// CartPersistence is the cart persistence channel: the full item list is
// saved under a single fixed identifier after every mutation.
type CartPersistence interface {
	Load() ([]RawCartItem, error)
	Save(items []domain.CartItem) error
}

// Cart holds the authoritative in-memory cart and mirrors every mutation to
// its persistence channel. It enforces the merge invariant: within one cart
// no two entries share the same (product, selection key) pair.
//
// Cart performs no stock checks of its own; callers consult the stock
// resolver before adding.
type Cart struct {
	persist CartPersistence
	items   []domain.CartItem
}

func NewCart(persist CartPersistence) *Cart {
	return &Cart{persist: persist}
}

// Restore replaces the cart state with whatever the persistence channel
// holds. A missing or malformed payload yields an empty cart, never an
// error.
func (c *Cart) Restore() {
	raw, err := c.persist.Load()
	if err != nil {
		zap.L().Warn("cart restore failed, starting empty", zap.Error(err))
		c.items = nil
		return
	}
	c.Load(raw)
}

// Load replaces the cart state with the given entries, normalizing every
// selected color to its plain string form.
func (c *Cart) Load(raw []RawCartItem) {
	c.items = normalizeItems(raw)
}

// AddToCart merges the given selection into the cart. An entry with the
// same product and selection key has its quantity increased; otherwise a
// new entry is appended with a fresh cart id.
func (c *Cart) AddToCart(product *domain.Product, quantity int, selected map[string]domain.VariantOption, color interface{}) (domain.CartItem, error) {
	if product == nil {
		return domain.CartItem{}, ErrNilProduct
	}
	if quantity < 1 {
		return domain.CartItem{}, ErrInvalidQuantity
	}
	var item domain.CartItem
	c.items, item = addItem(c.items, product, quantity, selected, color)
	c.persistItems()
	return item, nil
}

// RemoveFromCart deletes the entry with the given cart id. Removing an
// unknown id is a no-op.
func (c *Cart) RemoveFromCart(cartID string) {
	c.items = removeItem(c.items, cartID)
	c.persistItems()
}

// UpdateQuantity sets an entry's quantity. A quantity of zero or less
// removes the entry.
func (c *Cart) UpdateQuantity(cartID string, quantity int) {
	if quantity <= 0 {
		c.items = removeItem(c.items, cartID)
	} else {
		c.items = setQuantity(c.items, cartID, quantity)
	}
	c.persistItems()
}

// ClearCart empties the cart
func (c *Cart) ClearCart() {
	c.items = nil
	c.persistItems()
}

// Items returns a copy of the current entries in insertion order
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalItems returns the summed quantity across all entries
func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice returns the summed price*quantity across all entries
func (c *Cart) TotalPrice() float64 {
	total := 0.0
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// persistItems mirrors the item list to the persistence channel. It is an
// observed effect after the state transition; a write failure keeps the
// in-memory cart usable.
func (c *Cart) persistItems() {
	if c.persist == nil {
		return
	}
	if err := c.persist.Save(c.items); err != nil {
		zap.L().Warn("cart persist failed", zap.Error(err))
	}
}

// --- pure state transitions ---

func normalizeItems(raw []RawCartItem) []domain.CartItem {
	if len(raw) == 0 {
		return nil
	}
	items := make([]domain.CartItem, 0, len(raw))
	for _, r := range raw {
		if r.Quantity < 1 {
			continue
		}
		color, _ := ColorKey(r.SelectedColor)
		items = append(items, domain.CartItem{
			CartID:           r.CartID,
			ProductID:        r.ProductID,
			Name:             r.Name,
			Price:            r.Price,
			Image:            r.Image,
			Quantity:         r.Quantity,
			SelectedVariants: r.SelectedVariants,
			SelectedColor:    color,
		})
	}
	return items
}

func addItem(items []domain.CartItem, product *domain.Product, quantity int, selected map[string]domain.VariantOption, color interface{}) ([]domain.CartItem, domain.CartItem) {
	normColor, _ := ColorKey(color)
	key := SelectionKey(selected, normColor)

	for i, it := range items {
		if it.ProductID == product.ID && SelectionKey(it.SelectedVariants, it.SelectedColor) == key {
			next := make([]domain.CartItem, len(items))
			copy(next, items)
			next[i].Quantity = it.Quantity + quantity
			return next, next[i]
		}
	}

	item := domain.CartItem{
		// The nanosecond component keeps rapid add/remove/add cycles on the
		// same selection from colliding.
		CartID:           fmt.Sprintf("%d-%s-%d", product.ID, key, time.Now().UnixNano()),
		ProductID:        product.ID,
		Name:             product.Name,
		Price:            product.Price,
		Image:            product.Image,
		Quantity:         quantity,
		SelectedVariants: selected,
		SelectedColor:    normColor,
	}
	next := make([]domain.CartItem, len(items), len(items)+1)
	copy(next, items)
	return append(next, item), item
}

func removeItem(items []domain.CartItem, cartID string) []domain.CartItem {
	next := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.CartID != cartID {
			next = append(next, it)
		}
	}
	return next
}

func setQuantity(items []domain.CartItem, cartID string, quantity int) []domain.CartItem {
	next := make([]domain.CartItem, len(items))
	copy(next, items)
	for i := range next {
		if next[i].CartID == cartID {
			next[i].Quantity = quantity
		}
	}
	return next
}
