package domain

import (
	"context"
	"errors"

	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type CreateVendorRequest struct {
	Name  string
	Email string
}

type ListVendorRequest struct {
	PageToken string
	PageSize  int32
}

type ListVendorResponse struct {
	pagination.PageInfo
	Vendors []Vendor `json:"vendors"`
}

type GetVendorRequest struct {
	ID string
}

type RequestUpgradeRequest struct {
	VendorID        string
	AdditionalSlots int64
}

type ApplyUpgradeRequest struct {
	VendorID string
}

// Usage is a vendor's quota position.
type Usage struct {
	CustomerCount int64 `json:"customer_count"`
	CustomerLimit int64 `json:"customer_limit"`
}

type Service interface {
	Create(context.Context, CreateVendorRequest) (Vendor, error)
	List(context.Context, ListVendorRequest) (ListVendorResponse, error)
	GetByID(context.Context, GetVendorRequest) (Vendor, error)
	Approve(context.Context, GetVendorRequest) (Vendor, error)

	CanAddCustomer(ctx context.Context, req GetVendorRequest) (bool, Usage, error)
	Usage(ctx context.Context, req GetVendorRequest) (Usage, error)

	RequestUpgrade(context.Context, RequestUpgradeRequest) (UpgradeIntent, error)
	ApplyUpgrade(context.Context, ApplyUpgradeRequest) (Vendor, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidSlots     = errors.New("invalid_slots")
	ErrNotFound         = errors.New("not_found")
	ErrQuotaExceeded    = errors.New("quota_exceeded")
	ErrUpgradePending   = errors.New("upgrade_pending")
	ErrNoPendingUpgrade = errors.New("no_pending_upgrade")
)
