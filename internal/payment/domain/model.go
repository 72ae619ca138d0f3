package domain

import (
	"context"
	"errors"
	"time"
)

// Method is how a vendor settles a token request.
type Method string

const (
	MethodGateway      Method = "GATEWAY"
	MethodBankTransfer Method = "BANK_TRANSFER"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodGateway, MethodBankTransfer:
		return true
	default:
		return false
	}
}

type InitializeRequest struct {
	Reference string
	Amount    int64
	Email     string
}

type InitializeResponse struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

type VerifyResult struct {
	Reference string
	Status    string
	Amount    int64
	PaidAt    time.Time
}

// WebhookEvent is a normalized gateway notification.
type WebhookEvent struct {
	Type      string
	Reference string
	Amount    int64
	PaidAt    time.Time
}

const EventTypeChargeSucceeded = "charge.success"

// Provider abstracts the payment gateway. Amounts are minor units (kobo).
type Provider interface {
	Name() string
	Initialize(ctx context.Context, req InitializeRequest) (InitializeResponse, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
	VerifyWebhookSignature(payload []byte, signature string) error
	ParseWebhookEvent(payload []byte) (WebhookEvent, error)
}

var (
	ErrInvalidSignature     = errors.New("invalid_signature")
	ErrInvalidPayload       = errors.New("invalid_payload")
	ErrEventIgnored         = errors.New("event_ignored")
	ErrTransactionNotFound  = errors.New("transaction_not_found")
	ErrPaymentNotSuccessful = errors.New("payment_not_successful")
	ErrProviderUnavailable  = errors.New("provider_unavailable")
)
