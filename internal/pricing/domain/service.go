package domain

import (
	"context"
	"errors"
)

type SetPriceRequest struct {
	Disco        string
	PricePerUnit int64
}

type GetPriceRequest struct {
	Disco string
}

type ListPricesResponse struct {
	Prices []DiscoPrice `json:"prices"`
}

type Service interface {
	SetPrice(context.Context, SetPriceRequest) (DiscoPrice, error)
	GetByDisco(context.Context, GetPriceRequest) (DiscoPrice, error)
	List(context.Context) (ListPricesResponse, error)
}

var (
	ErrInvalidDisco = errors.New("invalid_disco")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrNotFound     = errors.New("not_found")
)
