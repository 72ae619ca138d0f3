package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/voltvend/voltvend/internal/payment/domain"
)

// PaystackWebhook confirms gateway payments. The signature check is the
// only authentication on this route.
func (s *Server) PaystackWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if err := s.paymentProvider.VerifyWebhookSignature(payload, signature); err != nil {
		s.obsMetrics.RecordPaymentEvent(s.paymentProvider.Name(), "invalid_signature")
		AbortWithError(c, err)
		return
	}

	event, err := s.paymentProvider.ParseWebhookEvent(payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.obsMetrics.RecordPaymentEvent(s.paymentProvider.Name(), "ignored")
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		s.obsMetrics.RecordPaymentEvent(s.paymentProvider.Name(), "invalid_payload")
		AbortWithError(c, err)
		return
	}

	request, err := s.tokenRequestSvc.ConfirmGatewayPayment(c.Request.Context(), event.Reference, event.Amount)
	if err != nil {
		s.obsMetrics.RecordPaymentEvent(s.paymentProvider.Name(), "rejected")
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordPaymentEvent(s.paymentProvider.Name(), "confirmed")
	c.JSON(http.StatusOK, gin.H{"data": request})
}
