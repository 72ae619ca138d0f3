package domain

import (
	"context"
	"errors"

	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type RegisterCustomerRequest struct {
	MeterNumber string
	Disco       string
	Name        string
	Address     string
	Phone       string
	LastToken   string
}

type ListCustomerRequest struct {
	PageToken   string
	PageSize    int32
	VendorID    string
	Disco       string
	MeterNumber string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Register(context.Context, RegisterCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidVendor          = errors.New("invalid_vendor")
	ErrInvalidMeterNumber     = errors.New("invalid_meter_number")
	ErrInvalidDisco           = errors.New("invalid_disco")
	ErrInvalidID              = errors.New("invalid_id")
	ErrMeterAlreadyRegistered = errors.New("meter_already_registered")
	ErrNotFound               = errors.New("not_found")
)
