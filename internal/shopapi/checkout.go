package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/checkout"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/webserver"
)

func registerCheckoutRoutes() {
	webserver.PubPOST("/shop/checkout/verify", verifyCheckout)
	webserver.PubPOST("/shop/checkout", placeOrder)
	webserver.PubPOST("/shop/orders/:id/pay", payOrder)
}

type checkoutPayload struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	ShipAddress   string `json:"ship_address"`
	ShipCity      string `json:"ship_city"`
	PaymentMethod string `json:"payment_method"`
	Remark        string `json:"remark"`
}

// orderItemsFrom snapshots the cart into order line items
func orderItemsFrom(items []domain.CartItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.OrderItem{
			ProductID:        item.ProductID,
			Name:             item.Name,
			Price:            item.Price,
			Quantity:         item.Quantity,
			SelectedVariants: item.SelectedVariants,
			SelectedColor:    item.SelectedColor,
		})
	}
	return out
}

// verifyCheckout reports stock problems without creating anything, so the
// front-end can show them before the shopper commits
func verifyCheckout(c echo.Context) error {
	cart := sessionCart(c)
	check := checkoutSvc.VerifyStock(c.Request().Context(), orderItemsFrom(cart.Items()))
	return ok(c, check)
}

func placeOrder(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout form", err.Error())
	}
	if strings.TrimSpace(payload.CustomerName) == "" || strings.TrimSpace(payload.CustomerEmail) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Customer name and email are required", nil)
	}

	cart := sessionCart(c)
	items := orderItemsFrom(cart.Items())
	if len(items) == 0 {
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	}

	check := checkoutSvc.VerifyStock(c.Request().Context(), items)
	if !check.IsValid {
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Some items are not available", check)
	}

	order := &domain.Order{
		Items:         items,
		CustomerName:  payload.CustomerName,
		CustomerEmail: payload.CustomerEmail,
		CustomerPhone: payload.CustomerPhone,
		ShipAddress:   payload.ShipAddress,
		ShipCity:      payload.ShipCity,
		PaymentMethod: payload.PaymentMethod,
		Remark:        payload.Remark,
	}
	created, err := checkoutSvc.CreateOrder(c.Request().Context(), order)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "ORDER_ERROR", "Failed to create order", err.Error())
	}

	cart.ClearCart()
	return ok(c, map[string]interface{}{
		"order":    created,
		"warnings": check.Warnings,
	})
}

// payOrder confirms payment for a pending order. This stands in for the
// payment provider callback; the status transition is what commits stock.
func payOrder(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, err := checkoutSvc.TransitionStatus(c.Request().Context(), id, domain.OrderStatusProcessing)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidTransition) {
			return fail(c, http.StatusConflict, "INVALID_TRANSITION", "Order cannot be paid in its current state", err.Error())
		}
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", err.Error())
	}
	return ok(c, order)
}
