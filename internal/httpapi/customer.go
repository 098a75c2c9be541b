package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feiradobairro/marketplace/internal/domain/order"
)

type cartLineReq struct {
	MerchantID  string          `json:"merchant_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createOrderReq struct {
	CustomerID     string        `json:"customer_id"`
	Lines          []cartLineReq `json:"lines"`
	PickupEntrance string        `json:"pickup_entrance"`
	PickupTime     time.Time     `json:"pickup_time"`
	PaymentMethod  string        `json:"payment_method"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: 400, Message: "invalid json"})
		return
	}

	lines := make([]order.CartLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = order.CartLine{
			MerchantID:  l.MerchantID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
		}
	}

	o, err := s.orders.CreateOrder(c.Request.Context(), order.DraftOrder{
		CustomerID:     req.CustomerID,
		Lines:          lines,
		PickupEntrance: req.PickupEntrance,
		PickupTime:     req.PickupTime,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// payOrder runs the simulated payment confirmation: charge the order total
// against the gateway, then stamp the order paid. The order ID doubles as the
// idempotency key, so replaying the request after a timeout cannot
// double-charge.
func (s *Server) payOrder(c *gin.Context) {
	id := c.Param("id")

	o, err := s.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	paid, err := s.gateway.Charge(c.Request.Context(), o.ID, o.Total)
	if err != nil {
		writeError(c, err)
		return
	}
	if !paid {
		c.JSON(http.StatusPaymentRequired, errorBody{Code: 402, Message: "payment declined"})
		return
	}

	o, err = s.orders.MarkPaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type actorReq struct {
	CustomerID string `json:"customer_id"`
	CourierID  string `json:"courier_id"`
}

func (s *Server) confirmReceipt(c *gin.Context) {
	var req actorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: 400, Message: "invalid json"})
		return
	}

	o, err := s.orders.ConfirmDelivery(c.Request.Context(), c.Param("id"), req.CustomerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) customerOrders(c *gin.Context) {
	scope := order.Scope(c.DefaultQuery("scope", string(order.ScopeActive)))

	os, err := s.orders.CustomerOrders(c.Request.Context(), c.Param("id"), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, os)
}
