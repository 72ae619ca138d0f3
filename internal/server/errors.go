package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/voltvend/voltvend/internal/customer/domain"
	paymentdomain "github.com/voltvend/voltvend/internal/payment/domain"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	tokenrequestdomain "github.com/voltvend/voltvend/internal/tokenrequest/domain"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Errors  []ValidationError  `json:"errors,omitempty"`
	Usage   *vendordomain.Usage `json:"usage,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal_error")
)

// QuotaExceededError carries the vendor's quota position alongside the
// rejection so callers can display usage without a second request.
type QuotaExceededError struct {
	Usage vendordomain.Usage
}

func (QuotaExceededError) Error() string {
	return vendordomain.ErrQuotaExceeded.Error()
}

func (QuotaExceededError) Unwrap() error {
	return vendordomain.ErrQuotaExceeded
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// validationSentinels map input errors to the request field they fault.
var validationSentinels = map[error]string{
	customerdomain.ErrInvalidMeterNumber:        "meter_number",
	customerdomain.ErrInvalidDisco:              "disco",
	customerdomain.ErrInvalidVendor:             "vendor_id",
	customerdomain.ErrInvalidID:                 "id",
	pricingdomain.ErrInvalidDisco:               "disco",
	pricingdomain.ErrInvalidPrice:               "price_per_unit",
	vendordomain.ErrInvalidName:                 "name",
	vendordomain.ErrInvalidEmail:                "email",
	vendordomain.ErrInvalidID:                   "id",
	vendordomain.ErrInvalidSlots:                "additional_slots",
	verificationdomain.ErrInvalidID:             "customer_id",
	verificationdomain.ErrInvalidMeter:          "meter_number",
	verificationdomain.ErrMissingKeyField:       "key_fields",
	verificationdomain.ErrMissingReason:         "reason",
	tokenrequestdomain.ErrInvalidID:             "id",
	tokenrequestdomain.ErrInvalidCustomer:       "customer_id",
	tokenrequestdomain.ErrInvalidUnits:          "units",
	tokenrequestdomain.ErrInvalidMethod:         "payment_method",
	tokenrequestdomain.ErrInvalidStatusFilter:   "status",
	tokenrequestdomain.ErrInvalidTokenValue:     "value",
	tokendomain.ErrInvalidMeter:                 "meter_number",
	tokendomain.ErrInvalidID:                    "id",
	paymentdomain.ErrInvalidPayload:             "payload",
}

// conflictSentinels are state rejections that map to 409.
var conflictSentinels = []error{
	vendordomain.ErrQuotaExceeded,
	vendordomain.ErrUpgradePending,
	vendordomain.ErrNoPendingUpgrade,
	customerdomain.ErrMeterAlreadyRegistered,
	verificationdomain.ErrAlreadyVerified,
	verificationdomain.ErrRejected,
	tokenrequestdomain.ErrInvalidState,
	tokenrequestdomain.ErrAmountMismatch,
	tokenrequestdomain.ErrPriceNotSet,
	tokenrequestdomain.ErrAlreadyIssued,
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErrs.Errors,
		}
	}

	for sentinel, field := range validationSentinels {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: "validation error",
				Errors: []ValidationError{
					{
						Field:   field,
						Code:    sentinel.Error(),
						Message: sentinel.Error(),
					},
				},
			}
		}
	}

	var quotaErr QuotaExceededError
	if errors.As(err, &quotaErr) {
		usage := quotaErr.Usage
		return http.StatusConflict, errorPayload{
			Type:    "quota_exceeded",
			Message: "customer limit reached",
			Usage:   &usage,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, tokenrequestdomain.ErrVerificationRequired):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "verification_required",
			Message: "meter verification required before issuance",
		}
	case errors.Is(err, paymentdomain.ErrPaymentNotSuccessful):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_not_successful",
			Message: "payment not successful",
		}
	case errors.Is(err, paymentdomain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "payment provider unavailable",
		}
	case errors.Is(err, tokenrequestdomain.ErrVendingPaused):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "vending_paused",
			Message: "vending temporarily paused",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	}

	for _, sentinel := range conflictSentinels {
		if errors.Is(err, sentinel) {
			return http.StatusConflict, errorPayload{
				Type:    sentinel.Error(),
				Message: sentinel.Error(),
			}
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func isNotFoundError(err error) bool {
	return errors.Is(err, customerdomain.ErrNotFound) ||
		errors.Is(err, vendordomain.ErrNotFound) ||
		errors.Is(err, verificationdomain.ErrNotFound) ||
		errors.Is(err, pricingdomain.ErrNotFound) ||
		errors.Is(err, tokendomain.ErrNotFound) ||
		errors.Is(err, tokenrequestdomain.ErrNotFound) ||
		errors.Is(err, paymentdomain.ErrTransactionNotFound) ||
		errors.Is(err, tokenrequestdomain.ErrInvalidReference)
}

// classifyErrorForLog labels request errors for structured logging.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "auth", payload.Type
	case status == http.StatusBadRequest:
		return "validation", payload.Type
	default:
		return "domain", payload.Type
	}
}
