package domain

import (
	"context"
	"errors"
)

type GetVerificationRequest struct {
	MeterNumber string
}

// SubmitVerificationRequest carries the eight key fields. All are required.
type SubmitVerificationRequest struct {
	CustomerID string
	VerifiedBy string

	KRN  string
	SGC  string
	TI   string
	MSN  string
	MTK1 string
	MTK2 string
	RTK1 string
	RTK2 string
}

type RejectVerificationRequest struct {
	CustomerID string
	Reason     string
}

type Service interface {
	GetByMeter(context.Context, GetVerificationRequest) (Verification, error)
	Submit(context.Context, SubmitVerificationRequest) (Verification, error)
	Reject(context.Context, RejectVerificationRequest) (Verification, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidMeter    = errors.New("invalid_meter_number")
	ErrMissingKeyField = errors.New("missing_key_field")
	ErrMissingReason   = errors.New("missing_reason")
	ErrAlreadyVerified = errors.New("already_verified")
	ErrRejected        = errors.New("verification_rejected")
	ErrNotFound        = errors.New("not_found")
)
