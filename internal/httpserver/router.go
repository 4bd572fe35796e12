package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strawbeary/internal/logger"
	cartsvc "strawbeary/internal/service/cart"
	menusvc "strawbeary/internal/service/menu"
	ordersvc "strawbeary/internal/service/order"
)

// Deps carries the services the router dispatches to.
type Deps struct {
	CartSvc     *cartsvc.Service
	OrderSvc    *ordersvc.Service
	MenuSvc     *menusvc.Service
	Readiness   map[string]Pinger
	CORSOrigins []string
}

// buildRouter wires routes for the API. Every route is served both at the root and under /api.
func buildRouter(l *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.OrderSvc == nil || deps.MenuSvc == nil {
		return nil, errors.New("httpserver: cart, order and menu services are required")
	}
	l = logger.OrNop(l)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logger.GinMiddleware(l), logger.Recovery(l), cors.New(corsConfig(deps.CORSOrigins)))

	h := &handlers{cart: deps.CartSvc, orders: deps.OrderSvc, menu: deps.MenuSvc, logger: l}
	for _, r := range []gin.IRouter{router, router.Group("/api")} {
		r.GET("/healthz", healthHandler)
		r.GET("/health", healthHandler)
		r.GET("/readyz", readyHandler(deps.Readiness))

		r.GET("/menu", h.listMenu)
		r.POST("/menu", h.createMenuItem)

		r.GET("/cart/:sessionId", h.getCart)
		r.POST("/cart", h.saveCart)

		r.POST("/orders", h.placeOrder)
		r.GET("/orders/:sessionId", h.listOrders)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Idempotency-Key", "X-Request-ID")
	cfg.AddExposeHeaders("X-Request-ID")
	return cfg
}

type handlers struct {
	cart   *cartsvc.Service
	orders *ordersvc.Service
	menu   *menusvc.Service
	logger *zap.Logger
}

// NewHandler returns the API router for embedding in another server or a test.
func NewHandler(l *zap.Logger, deps Deps) (http.Handler, error) {
	router, err := buildRouter(l, deps)
	if err != nil {
		return nil, err
	}
	return router, nil
}
