package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	VendorID    snowflake.ID
	Statuses    []Status
	MeterNumber string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *TokenRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TokenRequest, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*TokenRequest, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*TokenRequest, error)
	CountByStatus(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (map[Status]int64, error)

	// Transition writes the request's mutable fields guarded by a
	// compare-and-swap on the status column. It reports false when the
	// row was no longer in the from status.
	Transition(ctx context.Context, db *gorm.DB, request *TokenRequest, from Status) (bool, error)
}
