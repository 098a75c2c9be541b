// Package httpapi is the HTTP surface consumed by the three actor apps:
// customer, merchant, and courier. It is a thin layer over the order
// lifecycle service; every business rule lives in the domain package.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/feiradobairro/marketplace/internal/domain/order"
	"github.com/feiradobairro/marketplace/internal/payment"
)

// Server holds the gin engine and the dependencies of the route handlers.
type Server struct {
	engine  *gin.Engine
	orders  *order.Service
	gateway payment.Gateway
}

// NewServer builds the router. The caller is expected to mount Engine()
// behind its own middleware chain, so the engine carries no logging or
// recovery of its own; only CORS is handled here.
func NewServer(orders *order.Service, gateway payment.Gateway, corsOrigins []string) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:  gin.New(),
		orders:  orders,
		gateway: gateway,
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	s.engine.Use(cors.New(corsCfg))

	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine as an http.Handler.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")

	// Customer collaborator.
	v1.POST("/orders", s.createOrder)
	v1.GET("/orders/:id", s.getOrder)
	v1.POST("/orders/:id/pay", s.payOrder)
	v1.POST("/orders/:id/confirm-receipt", s.confirmReceipt)
	v1.GET("/customers/:id/orders", s.customerOrders)

	// Merchant collaborator.
	v1.GET("/merchants/:id/pending-items", s.merchantPendingItems)
	v1.POST("/line-items/:id/decision", s.decideLineItem)

	// Courier collaborator.
	v1.GET("/deliveries/available", s.availableDeliveries)
	v1.GET("/couriers/:id/deliveries", s.courierDeliveries)
	v1.POST("/orders/:id/claim", s.claimOrder)
	v1.POST("/orders/:id/en-route", s.markEnRoute)
	v1.POST("/orders/:id/arrived", s.markArrived)
}

// errorBody is the uniform error response shape.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors become 500 without leaking internals.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var vErr *order.ValidationError
	var tErr *order.TransientError
	switch {
	case errors.As(err, &vErr):
		status, msg = http.StatusBadRequest, vErr.Error()
	case errors.Is(err, order.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, order.ErrConflict):
		status, msg = http.StatusConflict, "state changed, refresh and retry"
	case errors.As(err, &tErr):
		status, msg = http.StatusServiceUnavailable, "store unavailable, retry"
	}

	c.AbortWithStatusJSON(status, errorBody{Code: status, Message: msg})
}
