package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/voltvend/voltvend/internal/customer/domain"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type registerCustomerRequest struct {
	MeterNumber string `json:"meter_number"`
	Disco       string `json:"disco"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	LastToken   string `json:"last_token"`
}

func (s *Server) RegisterCustomer(c *gin.Context) {
	var req registerCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Register(c.Request.Context(), customerdomain.RegisterCustomerRequest{
		MeterNumber: strings.TrimSpace(req.MeterNumber),
		Disco:       strings.TrimSpace(req.Disco),
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		Phone:       strings.TrimSpace(req.Phone),
		LastToken:   strings.TrimSpace(req.LastToken),
	})
	if err != nil {
		if errors.Is(err, vendordomain.ErrQuotaExceeded) {
			AbortWithError(c, s.quotaExceeded(c))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// quotaExceeded attaches the vendor's quota position to the rejection.
func (s *Server) quotaExceeded(c *gin.Context) error {
	vendorID, ok := vendorIDFromRequest(c)
	if !ok {
		return vendordomain.ErrQuotaExceeded
	}

	usage, err := s.vendorSvc.Usage(c.Request.Context(), vendordomain.GetVendorRequest{ID: vendorID})
	if err != nil {
		return vendordomain.ErrQuotaExceeded
	}
	return QuotaExceededError{Usage: usage}
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		VendorID    string `form:"vendor_id"`
		Disco       string `form:"disco"`
		MeterNumber string `form:"meter_number"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		VendorID:    strings.TrimSpace(query.VendorID),
		Disco:       strings.TrimSpace(query.Disco),
		MeterNumber: strings.TrimSpace(query.MeterNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetCustomer(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CountCustomers(c *gin.Context) {
	count, err := s.customerSvc.Count(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"count": count}})
}
