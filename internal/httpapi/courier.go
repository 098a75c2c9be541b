package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) availableDeliveries(c *gin.Context) {
	os, err := s.orders.AvailableForDelivery(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, os)
}

func (s *Server) courierDeliveries(c *gin.Context) {
	os, err := s.orders.CourierDeliveries(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, os)
}

func (s *Server) claimOrder(c *gin.Context) {
	var req actorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: 400, Message: "invalid json"})
		return
	}

	o, err := s.orders.ClaimForDelivery(c.Request.Context(), c.Param("id"), req.CourierID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) markEnRoute(c *gin.Context) {
	var req actorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: 400, Message: "invalid json"})
		return
	}

	o, err := s.orders.MarkEnRoute(c.Request.Context(), c.Param("id"), req.CourierID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) markArrived(c *gin.Context) {
	var req actorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: 400, Message: "invalid json"})
		return
	}

	o, err := s.orders.MarkAwaitingConfirmation(c.Request.Context(), c.Param("id"), req.CourierID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
