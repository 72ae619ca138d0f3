package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListCustomerFilter struct {
	VendorID    snowflake.ID
	Disco       string
	MeterNumber string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByMeter(ctx context.Context, db *gorm.DB, disco, meterNumber string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
	Count(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (int64, error)
	UpdateLastToken(ctx context.Context, db *gorm.DB, id snowflake.ID, token string) error
}
