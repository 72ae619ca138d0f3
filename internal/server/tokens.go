package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
)

func (s *Server) ListTokensByMeter(c *gin.Context) {
	var query struct {
		pagination.Pagination
		MeterNumber string `form:"meter_number"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tokenSvc.ListByMeter(c.Request.Context(), tokendomain.ListTokenRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		MeterNumber: strings.TrimSpace(query.MeterNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
