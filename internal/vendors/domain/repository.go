package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vendor, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Vendor, error)
	SetApproved(ctx context.Context, db *gorm.DB, id snowflake.ID, approved bool) (bool, error)

	// ReserveSlot atomically claims one customer slot. It reports false
	// when the vendor is at its limit.
	ReserveSlot(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	InsertUpgrade(ctx context.Context, db *gorm.DB, intent *UpgradeIntent) error
	FindPendingUpgrade(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (*UpgradeIntent, error)
	MarkUpgradeApplied(ctx context.Context, db *gorm.DB, intent *UpgradeIntent) (bool, error)
	SetPendingUpgrade(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, pending bool) (bool, error)
	RaiseLimit(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, slots int64) (bool, error)
}
