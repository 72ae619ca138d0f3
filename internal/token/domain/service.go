package domain

import (
	"context"
	"errors"

	"github.com/voltvend/voltvend/pkg/db/pagination"
)

type ListTokenRequest struct {
	PageToken   string
	PageSize    int32
	MeterNumber string
}

type ListTokenResponse struct {
	pagination.PageInfo
	Tokens []Token `json:"tokens"`
}

type GetTokenRequest struct {
	TokenRequestID string
}

type Service interface {
	ListByMeter(context.Context, ListTokenRequest) (ListTokenResponse, error)
	GetByRequestID(context.Context, GetTokenRequest) (Token, error)
}

var (
	ErrInvalidMeter = errors.New("invalid_meter_number")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
