package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/vendors/domain"
	"github.com/voltvend/voltvend/pkg/db/option"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vendors (id, name, email, approved, customer_limit, customer_count, pending_upgrade, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vendor.ID,
		vendor.Name,
		vendor.Email,
		vendor.Approved,
		vendor.CustomerLimit,
		vendor.CustomerCount,
		vendor.PendingUpgrade,
		vendor.Metadata,
		vendor.CreatedAt,
		vendor.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, approved, customer_limit, customer_count, pending_upgrade, metadata, created_at, updated_at
		 FROM vendors WHERE id = ?`,
		id,
	).Scan(&vendor).Error
	if err != nil {
		return nil, err
	}
	if vendor.ID == 0 {
		return nil, nil
	}
	return &vendor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.Vendor, error) {
	var vendors []*domain.Vendor
	stmt := db.WithContext(ctx).Model(&domain.Vendor{})
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *repo) SetApproved(ctx context.Context, db *gorm.DB, id snowflake.ID, approved bool) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE vendors SET approved = ?, updated_at = ? WHERE id = ?`,
		approved, time.Now().UTC(), id,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repo) ReserveSlot(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE vendors SET customer_count = customer_count + 1, updated_at = ?
		 WHERE id = ? AND customer_count < customer_limit`,
		time.Now().UTC(), id,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repo) InsertUpgrade(ctx context.Context, db *gorm.DB, intent *domain.UpgradeIntent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vendor_upgrades (id, vendor_id, additional_slots, unit_price, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		intent.ID,
		intent.VendorID,
		intent.AdditionalSlots,
		intent.UnitPrice,
		intent.Amount,
		intent.Status,
		intent.CreatedAt,
	).Error
}

func (r *repo) FindPendingUpgrade(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (*domain.UpgradeIntent, error) {
	var intent domain.UpgradeIntent
	err := db.WithContext(ctx).Raw(
		`SELECT id, vendor_id, additional_slots, unit_price, amount, status, created_at, applied_at
		 FROM vendor_upgrades WHERE vendor_id = ? AND status = ?
		 ORDER BY created_at DESC LIMIT 1`,
		vendorID, domain.UpgradeStatusPending,
	).Scan(&intent).Error
	if err != nil {
		return nil, err
	}
	if intent.ID == 0 {
		return nil, nil
	}
	return &intent, nil
}

func (r *repo) MarkUpgradeApplied(ctx context.Context, db *gorm.DB, intent *domain.UpgradeIntent) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE vendor_upgrades SET status = ?, applied_at = ? WHERE id = ? AND status = ?`,
		domain.UpgradeStatusApplied, intent.AppliedAt, intent.ID, domain.UpgradeStatusPending,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repo) SetPendingUpgrade(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, pending bool) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE vendors SET pending_upgrade = ?, updated_at = ? WHERE id = ? AND pending_upgrade = ?`,
		pending, time.Now().UTC(), vendorID, !pending,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repo) RaiseLimit(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, slots int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE vendors SET customer_limit = customer_limit + ?, updated_at = ? WHERE id = ?`,
		slots, time.Now().UTC(), vendorID,
	)
	return result.RowsAffected > 0, result.Error
}
