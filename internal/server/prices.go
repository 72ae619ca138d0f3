package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
)

func (s *Server) ListPrices(c *gin.Context) {
	resp, err := s.pricingSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type setDiscoPriceRequest struct {
	PricePerUnit int64 `json:"price_per_unit"`
}

func (s *Server) SetDiscoPrice(c *gin.Context) {
	var req setDiscoPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.SetPrice(c.Request.Context(), pricingdomain.SetPriceRequest{
		Disco:        c.Param("disco"),
		PricePerUnit: req.PricePerUnit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
