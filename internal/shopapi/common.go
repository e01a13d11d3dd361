// Package shopapi exposes the public storefront surface: catalog
// browsing, the session cart and checkout.
package shopapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/tiendaviva/tienda/internal/app"
	"github.com/tiendaviva/tienda/internal/checkout"
	"github.com/tiendaviva/tienda/internal/store"
	"github.com/tiendaviva/tienda/internal/webserver"
	"gorm.io/gorm"
)

var (
	appCtx      app.AppContext
	checkoutSvc *checkout.Service
	products    store.ProductRepository
)

// Init wires the storefront handlers and registers their routes
func Init(a app.AppContext, svc *checkout.Service) {
	appCtx = a
	checkoutSvc = svc
	products = store.NewGormProductRepository(a.DB())
	registerCatalogRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
}

// GetDB returns the request-scoped database handle
func GetDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"code": 0, "data": data})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":   code,
		"msg":    msg,
		"detail": detail,
	})
}

// cartKey returns the shopper's cart identifier, minting one into the
// session cookie on first use
func cartKey(c echo.Context) string {
	sess, err := session.Get(webserver.SessionName, c)
	if err != nil || sess == nil {
		return uuid.NewString()
	}
	if v, okCast := sess.Values["cart_key"].(string); okCast && v != "" {
		return v
	}
	key := uuid.NewString()
	sess.Values["cart_key"] = key
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
	}
	_ = sess.Save(c.Request(), c.Response())
	return key
}

// sessionCart loads the shopper's cart from the persistence channel
func sessionCart(c echo.Context) *store.Cart {
	persist := store.NewBoltCartPersistence(appCtx.CartDB(), cartKey(c))
	cart := store.NewCart(persist)
	cart.Restore()
	return cart
}

func cartView(cart *store.Cart) map[string]interface{} {
	return map[string]interface{}{
		"items":      cart.Items(),
		"totalItems": cart.TotalItems(),
		"totalPrice": cart.TotalPrice(),
	}
}
