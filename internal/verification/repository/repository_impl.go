package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/verification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, verification *domain.Verification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO verifications (id, customer_id, meter_number, is_verified, rejected, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		verification.ID,
		verification.CustomerID,
		verification.MeterNumber,
		verification.IsVerified,
		verification.Rejected,
		verification.CreatedAt,
		verification.UpdatedAt,
	).Error
}

func (r *repo) FindByCustomerID(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Verification, error) {
	return r.findOne(ctx, db, "customer_id = ?", customerID)
}

func (r *repo) FindByMeter(ctx context.Context, db *gorm.DB, meterNumber string) (*domain.Verification, error) {
	return r.findOne(ctx, db, "meter_number = ?", meterNumber)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, arg any) (*domain.Verification, error) {
	var verification domain.Verification
	err := db.WithContext(ctx).
		Model(&domain.Verification{}).
		Where(cond, arg).
		Limit(1).
		Find(&verification).Error
	if err != nil {
		return nil, err
	}
	if verification.ID == 0 {
		return nil, nil
	}
	return &verification, nil
}

func (r *repo) Verify(ctx context.Context, db *gorm.DB, verification *domain.Verification) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE verifications
		 SET is_verified = ?, verified_at = ?, verified_by = ?,
		     krn = ?, sgc = ?, ti = ?, msn = ?, mtk1 = ?, mtk2 = ?, rtk1 = ?, rtk2 = ?,
		     updated_at = ?
		 WHERE customer_id = ? AND is_verified = ? AND rejected = ?`,
		true, verification.VerifiedAt, verification.VerifiedBy,
		verification.KRN, verification.SGC, verification.TI, verification.MSN,
		verification.MTK1, verification.MTK2, verification.RTK1, verification.RTK2,
		verification.UpdatedAt,
		verification.CustomerID, false, false,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repo) Reject(ctx context.Context, db *gorm.DB, verification *domain.Verification) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE verifications
		 SET rejected = ?, rejection_reason = ?, rejected_at = ?, updated_at = ?
		 WHERE customer_id = ? AND is_verified = ?`,
		true, verification.RejectionReason, verification.RejectedAt, verification.UpdatedAt,
		verification.CustomerID, false,
	)
	return result.RowsAffected > 0, result.Error
}
