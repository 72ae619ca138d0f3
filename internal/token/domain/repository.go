package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert is safe to call inside a caller-owned transaction. The
	// unique index on token_request_id enforces at most one token per
	// request; callers translate the duplicate key error.
	Insert(ctx context.Context, db *gorm.DB, token *Token) error
	FindByRequestID(ctx context.Context, db *gorm.DB, requestID snowflake.ID) (*Token, error)
	ListByMeter(ctx context.Context, db *gorm.DB, filter ListTokenFilter, page pagination.Pagination) ([]*Token, error)
}

type ListTokenFilter struct {
	VendorID    snowflake.ID
	MeterNumber string
}
