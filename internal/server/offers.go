package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	offerdomain "github.com/smallbiznis/optora/internal/offer/domain"
)

// CalculateOffer prices a cart without side effects. The admin simulator
// shares this handler.
func (s *Server) CalculateOffer(c *gin.Context) {
	var input offerdomain.CalculationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.offerSvc.Calculate(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckoutOffer recalculates and commits the coupon for a confirmed order.
func (s *Server) CheckoutOffer(c *gin.Context) {
	var req offerdomain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.offerSvc.Checkout(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
