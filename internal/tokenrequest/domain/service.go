package domain

import (
	"context"
	"errors"

	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type CreateRequest struct {
	CustomerID string
	Units      int64
}

type SelectPaymentMethodRequest struct {
	ID     string
	Method string
}

type SelectPaymentMethodResponse struct {
	Request          TokenRequest `json:"request"`
	AuthorizationURL string       `json:"authorization_url,omitempty"`
}

type ConfirmPaymentRequest struct {
	ID string
}

type CancelRequest struct {
	ID string
}

type ApproveRequest struct {
	ID string
}

type RejectRequest struct {
	ID     string
	Reason string
}

type IssueRequest struct {
	ID    string
	Value string
	MSN   string
}

type IssueResponse struct {
	Request TokenRequest      `json:"request"`
	Token   tokendomain.Token `json:"token"`
}

type ListRequest struct {
	PageToken   string
	PageSize    int32
	Statuses    []string
	MeterNumber string
	VendorID    string
}

type ListResponse struct {
	pagination.PageInfo
	Requests []TokenRequest `json:"requests"`
}

type GetRequest struct {
	ID string
}

type StatusCounts map[Status]int64

type Service interface {
	Create(context.Context, CreateRequest) (TokenRequest, error)
	SelectPaymentMethod(context.Context, SelectPaymentMethodRequest) (SelectPaymentMethodResponse, error)

	// ConfirmPayment moves PAYMENT_PENDING to PAYMENT_CONFIRMED. Gateway
	// requests are verified against the provider first; bank transfers
	// are taken on the vendor's word and reconciled at admin approval.
	ConfirmPayment(context.Context, ConfirmPaymentRequest) (TokenRequest, error)

	// ConfirmGatewayPayment is the webhook path. It is idempotent for
	// requests already at or past PAYMENT_CONFIRMED.
	ConfirmGatewayPayment(ctx context.Context, reference string, amount int64) (TokenRequest, error)

	Cancel(context.Context, CancelRequest) (TokenRequest, error)
	AdminApprove(context.Context, ApproveRequest) (TokenRequest, error)
	AdminReject(context.Context, RejectRequest) (TokenRequest, error)

	// Issue records the token and finalizes the request atomically. On
	// ErrAlreadyIssued the response still carries the existing token.
	Issue(context.Context, IssueRequest) (IssueResponse, error)

	List(context.Context, ListRequest) (ListResponse, error)
	GetByID(context.Context, GetRequest) (TokenRequest, error)
	CountsByStatus(ctx context.Context) (StatusCounts, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidUnits         = errors.New("invalid_units")
	ErrInvalidMethod        = errors.New("invalid_payment_method")
	ErrInvalidStatusFilter  = errors.New("invalid_status_filter")
	ErrInvalidState         = errors.New("invalid_state")
	ErrInvalidReference     = errors.New("invalid_reference")
	ErrInvalidTokenValue    = errors.New("invalid_token_value")
	ErrAmountMismatch       = errors.New("amount_mismatch")
	ErrPriceNotSet          = errors.New("price_not_set")
	ErrVendingPaused        = errors.New("vending_paused")
	ErrVerificationRequired = errors.New("verification_required")
	ErrAlreadyIssued        = errors.New("already_issued")
	ErrNotFound             = errors.New("not_found")
)
