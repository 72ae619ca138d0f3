package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, verification *Verification) error
	FindByCustomerID(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*Verification, error)
	FindByMeter(ctx context.Context, db *gorm.DB, meterNumber string) (*Verification, error)

	// Verify writes the key material and flips the record to verified.
	// It only matches records that are neither verified nor rejected.
	Verify(ctx context.Context, db *gorm.DB, verification *Verification) (bool, error)

	// Reject marks the record rejected. It only matches unverified records.
	Reject(ctx context.Context, db *gorm.DB, verification *Verification) (bool, error)
}
