package domain

// CartItem is one cart entry. It is not a database table: the whole cart is
// serialized as a JSON list into the cart persistence channel after every
// mutation.
//
// SelectedVariants maps a variant name to the chosen option.
// SelectedColor is always a plain string value; entries persisted before
// color normalization existed may carry an object form and are repaired
// when the cart is loaded.
type CartItem struct {
	CartID           string                   `json:"cartId"`
	ProductID        int64                    `json:"productId,string"`
	Name             string                   `json:"name"`
	Price            float64                  `json:"price"`
	Image            string                   `json:"image,omitempty"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants map[string]VariantOption `json:"selectedVariants,omitempty"`
	SelectedColor    string                   `json:"selectedColor,omitempty"`
}
