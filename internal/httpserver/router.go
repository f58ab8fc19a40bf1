package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chiringuito/internal/logging"
	menusvc "chiringuito/internal/service/menu"
	ordersvc "chiringuito/internal/service/order"
	"chiringuito/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type menuService interface {
	List(ctx context.Context) ([]menusvc.Item, error)
}

type orderService interface {
	AddItem(ctx context.Context, sess ordersvc.Session, menuItemID uuid.UUID, quantity int) (*ordersvc.Summary, error)
	GetCart(ctx context.Context, sess ordersvc.Session) (*ordersvc.Summary, bool, error)
	UpdateQuantity(ctx context.Context, sess ordersvc.Session, menuItemID uuid.UUID, quantity int) (*ordersvc.Summary, error)
	RemoveItem(ctx context.Context, sess ordersvc.Session, menuItemID uuid.UUID) error
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Deps are the collaborators the handlers need.
type Deps struct {
	DB                 pinger
	Sessions           session.Store
	MenuSvc            menuService
	OrderSvc           orderService
	Session            SessionOptions
	CORSAllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session store required")
	}
	if deps.MenuSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("menu and order services required")
	}
	if deps.Session.CookieName == "" {
		deps.Session.CookieName = "CHIRINGUITO_SESSION"
	}
	logger = logging.OrNop(logger)

	router := gin.New()
	router.Use(accessLog(logger), gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}))
	if len(deps.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.CORSAllowedOrigins)))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB, deps.Sessions))

	h := &handlers{logger: logger, menu: deps.MenuSvc, orders: deps.OrderSvc}
	api := router.Group("/api")
	api.GET("/menu", h.listMenu)

	orders := api.Group("/order", sessionMiddleware(deps.Sessions, deps.Session, logger))
	orders.POST("/add-item", h.addItem)
	orders.GET("/cart", h.getCart)
	orders.PUT("/update-quantity", h.updateQuantity)
	orders.DELETE("/remove-item/:menuItemId", h.removeItem)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		// Echo the caller's origin so credentialed requests pass.
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
