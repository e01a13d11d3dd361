package shopapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/store"
	"github.com/tiendaviva/tienda/internal/webserver"
	"github.com/tiendaviva/tienda/pkg/common"
	"go.uber.org/zap"
)

func registerCartRoutes() {
	webserver.PubGET("/shop/cart", getCart)
	webserver.PubPOST("/shop/cart/items", addCartItem)
	webserver.PubPUT("/shop/cart/items/:cartId", updateCartItem)
	webserver.PubDELETE("/shop/cart/items/:cartId", removeCartItem)
	webserver.PubDELETE("/shop/cart", clearCart)
}

type addItemPayload struct {
	ProductID        int64                           `json:"productId,string"`
	Quantity         int                             `json:"quantity"`
	SelectedVariants map[string]domain.VariantOption `json:"selectedVariants"`
	SelectedColor    interface{}                     `json:"selectedColor"`
}

type updateItemPayload struct {
	Quantity int `json:"quantity"`
}

func getCart(c echo.Context) error {
	return ok(c, cartView(sessionCart(c)))
}

func addCartItem(c echo.Context) error {
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	if payload.Quantity <= 0 {
		payload.Quantity = 1
	}

	product, err := products.FetchProduct(c.Request().Context(), payload.ProductID)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if product.Status != common.ENABLED {
		return fail(c, http.StatusConflict, "PRODUCT_DISABLED", "Product is not for sale", nil)
	}

	cart := sessionCart(c)

	// Availability is checked before mutating the cart: the total held for
	// this exact combination, existing plus requested, must fit in stock.
	var available int
	if product.HasVariants() && len(payload.SelectedVariants) > 0 {
		available = store.CombinationStock(product.Variants, payload.SelectedVariants)
	} else {
		available = store.TotalStock(product)
	}
	held := heldQuantity(cart, product.ID, payload.SelectedVariants, payload.SelectedColor)
	if held+payload.Quantity > available {
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for this selection",
			map[string]interface{}{"available": available, "inCart": held})
	}

	item, err := cart.AddToCart(product, payload.Quantity, payload.SelectedVariants, payload.SelectedColor)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to add item", err.Error())
	}
	zap.L().Info("cart item added",
		zap.String("cartId", item.CartID),
		zap.Int64("productId", product.ID),
		zap.Int("quantity", payload.Quantity))
	return ok(c, cartView(cart))
}

// heldQuantity sums what the cart already holds for the same selection
func heldQuantity(cart *store.Cart, productID int64, selections map[string]domain.VariantOption, color interface{}) int {
	key := store.SelectionKey(selections, color)
	held := 0
	for _, item := range cart.Items() {
		if item.ProductID == productID && store.SelectionKey(item.SelectedVariants, item.SelectedColor) == key {
			held += item.Quantity
		}
	}
	return held
}

func updateCartItem(c echo.Context) error {
	var payload updateItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity", err.Error())
	}
	cart := sessionCart(c)
	cart.UpdateQuantity(c.Param("cartId"), payload.Quantity)
	return ok(c, cartView(cart))
}

func removeCartItem(c echo.Context) error {
	cart := sessionCart(c)
	cart.RemoveFromCart(c.Param("cartId"))
	return ok(c, cartView(cart))
}

func clearCart(c echo.Context) error {
	cart := sessionCart(c)
	cart.ClearCart()
	return ok(c, cartView(cart))
}
