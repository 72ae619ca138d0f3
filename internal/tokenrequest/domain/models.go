package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the lifecycle position of a token request.
type Status string

const (
	StatusInitiated        Status = "INITIATED"
	StatusPaymentPending   Status = "PAYMENT_PENDING"
	StatusPaymentConfirmed Status = "PAYMENT_CONFIRMED"
	StatusAdminApproved    Status = "ADMIN_APPROVED"
	StatusAdminRejected    Status = "ADMIN_REJECTED"
	StatusIssued           Status = "ISSUED"
	StatusCanceled         Status = "CANCELED"
)

// ValidStatus reports whether s names a lifecycle status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusInitiated, StatusPaymentPending, StatusPaymentConfirmed,
		StatusAdminApproved, StatusAdminRejected, StatusIssued, StatusCanceled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition leaves s.
func Terminal(s Status) bool {
	return s == StatusAdminRejected || s == StatusIssued || s == StatusCanceled
}

// TokenRequest is one vending attempt. UnitPrice and Amount are snapshotted
// at creation and never recomputed; later disco price changes do not apply.
type TokenRequest struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VendorID    snowflake.ID `gorm:"not null;index" json:"vendor_id"`
	CustomerID  snowflake.ID `gorm:"not null;index" json:"customer_id"`
	MeterNumber string       `gorm:"not null;index" json:"meter_number"`
	Disco       string       `gorm:"not null" json:"disco"`

	Units     int64 `gorm:"not null" json:"units"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"`
	Amount    int64 `gorm:"not null" json:"amount"`

	PaymentMethod    string `json:"payment_method,omitempty"`
	PaymentReference string `gorm:"index" json:"payment_reference,omitempty"`

	Status          Status `gorm:"not null;index" json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	PaymentAt *time.Time `json:"payment_at,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
}
