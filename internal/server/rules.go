package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/orgcontext"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
)

// -------- Category discounts --------

func (s *Server) ListCategoryDiscounts(c *gin.Context) {
	discounts, err := s.catDiscSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": discounts})
}

func (s *Server) CreateCategoryDiscount(c *gin.Context) {
	var req catdiscdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	discount, err := s.catDiscSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.invalidateSnapshots(c)
	c.JSON(http.StatusCreated, discount)
}

func (s *Server) DeactivateCategoryDiscount(c *gin.Context) {
	if err := s.catDiscSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	s.invalidateSnapshots(c)
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// -------- Coupons --------

func (s *Server) ListCoupons(c *gin.Context) {
	coupons, err := s.couponSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": coupons})
}

func (s *Server) CreateCoupon(c *gin.Context) {
	var req coupondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	coupon, err := s.couponSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// ValidateCoupon previews a coupon against a cart value without touching
// usage counters.
func (s *Server) ValidateCoupon(c *gin.Context) {
	cartValue, err := strconv.ParseInt(c.DefaultQuery("cart_value", "0"), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("cart_value", "invalid_cart_value", "cart_value must be an integer"))
		return
	}

	coupon, reason, err := s.couponSvc.Validate(c.Request.Context(), c.Param("code"), cartValue, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if reason != "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"discount": coupon.Discount(cartValue),
	})
}

// -------- Combo tiers --------

func (s *Server) ListCombos(c *gin.Context) {
	tiers, err := s.comboSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tiers})
}

func (s *Server) CreateCombo(c *gin.Context) {
	var req combodomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tier, err := s.comboSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.invalidateSnapshots(c)
	c.JSON(http.StatusCreated, tier)
}

func (s *Server) DeactivateCombo(c *gin.Context) {
	if err := s.comboSvc.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		AbortWithError(c, err)
		return
	}
	s.invalidateSnapshots(c)
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// -------- Offer rules --------

func (s *Server) ListOfferRules(c *gin.Context) {
	rules, err := s.ruleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) CreateOfferRule(c *gin.Context) {
	var req offerruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.invalidateSnapshots(c)
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) ListStoreActivations(c *gin.Context) {
	maps, err := s.ruleSvc.ListStoreActivations(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": maps})
}

func (s *Server) SetStoreActivation(c *gin.Context) {
	var req offerruledomain.StoreActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.StoreID = c.Param("storeId")

	entry, err := s.ruleSvc.SetStoreActivation(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.invalidateSnapshots(c)
	c.JSON(http.StatusOK, entry)
}

// -------- Reward thresholds --------

func (s *Server) ListRewardThresholds(c *gin.Context) {
	thresholds, err := s.rewardSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": thresholds})
}

func (s *Server) CreateRewardThreshold(c *gin.Context) {
	var req rewarddomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	threshold, err := s.rewardSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, threshold)
}

func (s *Server) DeactivateRewardThreshold(c *gin.Context) {
	if err := s.rewardSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// invalidateSnapshots drops the cached rule snapshot for the request's
// scope so admin edits show up without waiting out the TTL.
func (s *Server) invalidateSnapshots(c *gin.Context) {
	ctx := c.Request.Context()
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return
	}
	storeID, _ := orgcontext.StoreIDFromContext(ctx)
	s.ruleLoader.Invalidate(orgID, storeID)
}
