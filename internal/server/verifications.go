package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
)

func (s *Server) GetVerification(c *gin.Context) {
	resp, err := s.verificationSvc.GetByMeter(c.Request.Context(), verificationdomain.GetVerificationRequest{
		MeterNumber: c.Param("meter_number"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type submitVerificationRequest struct {
	KRN  string `json:"krn"`
	SGC  string `json:"sgc"`
	TI   string `json:"ti"`
	MSN  string `json:"msn"`
	MTK1 string `json:"mtk1"`
	MTK2 string `json:"mtk2"`
	RTK1 string `json:"rtk1"`
	RTK2 string `json:"rtk2"`
}

func (s *Server) SubmitVerification(c *gin.Context) {
	var req submitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var verifiedBy string
	if actor, ok := actorFrom(c); ok {
		verifiedBy = actor
	}

	resp, err := s.verificationSvc.Submit(c.Request.Context(), verificationdomain.SubmitVerificationRequest{
		CustomerID: c.Param("id"),
		VerifiedBy: verifiedBy,
		KRN:        strings.TrimSpace(req.KRN),
		SGC:        strings.TrimSpace(req.SGC),
		TI:         strings.TrimSpace(req.TI),
		MSN:        strings.TrimSpace(req.MSN),
		MTK1:       strings.TrimSpace(req.MTK1),
		MTK2:       strings.TrimSpace(req.MTK2),
		RTK1:       strings.TrimSpace(req.RTK1),
		RTK2:       strings.TrimSpace(req.RTK2),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rejectVerificationRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectVerification(c *gin.Context) {
	var req rejectVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.verificationSvc.Reject(c.Request.Context(), verificationdomain.RejectVerificationRequest{
		CustomerID: c.Param("id"),
		Reason:     strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
