package webserver

import (
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tiendaviva/tienda/internal/app"
	"go.uber.org/zap"
)

// SessionName is the cookie carrying the shopper session (and with it the
// cart key)
const SessionName = "tienda_session"

type WebServer struct {
	root *echo.Echo
	api  *echo.Group
	pub  *echo.Group
	app  app.AppContext
}

var server *WebServer

// Init builds the echo server: a public group for the storefront and the
// login endpoint, and a JWT-protected /api group for the admin back-office.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(appCtx.Config().Web.Secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("app", appCtx)
			c.Set("db", appCtx.DB())
			return next(c)
		}
	})
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.Secret),
	}))

	server = &WebServer{
		root: e,
		api:  api,
		pub:  e.Group(""),
		app:  appCtx,
	}
	return server
}

// Listen starts the HTTP listener and blocks
func Listen() error {
	cfg := server.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Shutdown releases the listener
func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// ApiGET registers an admin route (JWT protected)
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// PubGET registers a public storefront route
func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

func PubPUT(path string, h echo.HandlerFunc) {
	server.pub.PUT(path, h)
}

func PubDELETE(path string, h echo.HandlerFunc) {
	server.pub.DELETE(path, h)
}
