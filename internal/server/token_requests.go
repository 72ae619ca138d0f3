package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tokenrequestdomain "github.com/voltvend/voltvend/internal/tokenrequest/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type createTokenRequestRequest struct {
	CustomerID string `json:"customer_id"`
	Units      int64  `json:"units"`
}

func (s *Server) CreateTokenRequest(c *gin.Context) {
	var req createTokenRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tokenRequestSvc.Create(c.Request.Context(), tokenrequestdomain.CreateRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Units:      req.Units,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type selectPaymentMethodRequest struct {
	Method string `json:"method"`
}

func (s *Server) SelectPaymentMethod(c *gin.Context) {
	var req selectPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tokenRequestSvc.SelectPaymentMethod(c.Request.Context(), tokenrequestdomain.SelectPaymentMethodRequest{
		ID:     c.Param("id"),
		Method: strings.TrimSpace(req.Method),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	resp, err := s.tokenRequestSvc.ConfirmPayment(c.Request.Context(), tokenrequestdomain.ConfirmPaymentRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelTokenRequest(c *gin.Context) {
	resp, err := s.tokenRequestSvc.Cancel(c.Request.Context(), tokenrequestdomain.CancelRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveTokenRequest(c *gin.Context) {
	resp, err := s.tokenRequestSvc.AdminApprove(c.Request.Context(), tokenrequestdomain.ApproveRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rejectTokenRequestRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectTokenRequest(c *gin.Context) {
	var req rejectTokenRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tokenRequestSvc.AdminReject(c.Request.Context(), tokenrequestdomain.RejectRequest{
		ID:     c.Param("id"),
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type issueTokenRequest struct {
	Value string `json:"value"`
	MSN   string `json:"msn"`
}

func (s *Server) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tokenRequestSvc.Issue(c.Request.Context(), tokenrequestdomain.IssueRequest{
		ID:    c.Param("id"),
		Value: strings.TrimSpace(req.Value),
		MSN:   strings.TrimSpace(req.MSN),
	})
	if err != nil {
		// A repeat issue resolves to the token already on file.
		if errors.Is(err, tokenrequestdomain.ErrAlreadyIssued) && resp.Token.ID != 0 {
			c.JSON(http.StatusOK, gin.H{"data": resp, "already_issued": true})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTokenRequests(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status      []string `form:"status"`
		MeterNumber string   `form:"meter_number"`
		VendorID    string   `form:"vendor_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tokenRequestSvc.List(c.Request.Context(), tokenrequestdomain.ListRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		Statuses:    query.Status,
		MeterNumber: strings.TrimSpace(query.MeterNumber),
		VendorID:    strings.TrimSpace(query.VendorID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetTokenRequest(c *gin.Context) {
	resp, err := s.tokenRequestSvc.GetByID(c.Request.Context(), tokenrequestdomain.GetRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CountTokenRequests(c *gin.Context) {
	counts, err := s.tokenRequestSvc.CountsByStatus(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}
