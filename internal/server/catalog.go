package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
)

func (s *Server) ListBrands(c *gin.Context) {
	brands, err := s.catalogSvc.ListBrands(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brands})
}

func (s *Server) CreateBrand(c *gin.Context) {
	var req catalogdomain.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	brand, err := s.catalogSvc.CreateBrand(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (s *Server) ListLenses(c *gin.Context) {
	lenses, err := s.catalogSvc.ListLensSKUs(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lenses})
}

func (s *Server) CreateLens(c *gin.Context) {
	var req catalogdomain.CreateLensSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lens, err := s.catalogSvc.CreateLensSKU(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lens)
}

func (s *Server) ListBandPricing(c *gin.Context) {
	bands, err := s.catalogSvc.ListBandPricing(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bands})
}

func (s *Server) CreateBandPricing(c *gin.Context) {
	var req catalogdomain.CreateBandPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.LensID = c.Param("id")

	band, err := s.catalogSvc.CreateBandPricing(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, band)
}

func (s *Server) ListAddOnPricing(c *gin.Context) {
	addOns, err := s.catalogSvc.ListAddOnPricing(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": addOns})
}

func (s *Server) CreateAddOnPricing(c *gin.Context) {
	var req catalogdomain.CreateAddOnPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.LensID = c.Param("id")

	addOn, err := s.catalogSvc.CreateAddOnPricing(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addOn)
}
