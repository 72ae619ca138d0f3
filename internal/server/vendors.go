package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type createVendorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vendorSvc.Create(c.Request.Context(), vendordomain.CreateVendorRequest{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVendors(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vendorSvc.List(c.Request.Context(), vendordomain.ListVendorRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetVendor(c *gin.Context) {
	resp, err := s.vendorSvc.GetByID(c.Request.Context(), vendordomain.GetVendorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveVendor(c *gin.Context) {
	resp, err := s.vendorSvc.Approve(c.Request.Context(), vendordomain.GetVendorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type requestUpgradeRequest struct {
	AdditionalSlots int64 `json:"additional_slots"`
}

func (s *Server) RequestUpgrade(c *gin.Context) {
	var req requestUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	vendorID, ok := vendorIDFromRequest(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.vendorSvc.RequestUpgrade(c.Request.Context(), vendordomain.RequestUpgradeRequest{
		VendorID:        vendorID,
		AdditionalSlots: req.AdditionalSlots,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApplyUpgrade(c *gin.Context) {
	resp, err := s.vendorSvc.ApplyUpgrade(c.Request.Context(), vendordomain.ApplyUpgradeRequest{
		VendorID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VendorUsage(c *gin.Context) {
	vendorID, ok := vendorIDFromRequest(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.vendorSvc.Usage(c.Request.Context(), vendordomain.GetVendorRequest{ID: vendorID})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
