package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feiradobairro/marketplace/internal/domain/order"
)

func (s *Server) merchantPendingItems(c *gin.Context) {
	items, err := s.orders.MerchantPendingItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type decisionReq struct {
	MerchantID string `json:"merchant_id"`
	Status     string `json:"status"`
}

func (s *Server) decideLineItem(c *gin.Context) {
	var req decisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: 400, Message: "invalid json"})
		return
	}

	item, err := s.orders.SetLineItemStatus(
		c.Request.Context(), c.Param("id"), req.MerchantID, order.ItemStatus(req.Status),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
