package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/tokenrequest/domain"
	"github.com/voltvend/voltvend/pkg/db/option"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const columns = `id, vendor_id, customer_id, meter_number, disco, units, unit_price, amount,
	payment_method, payment_reference, status, rejection_reason,
	created_at, updated_at, payment_at, decided_at, issued_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.TokenRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO token_requests (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.VendorID,
		request.CustomerID,
		request.MeterNumber,
		request.Disco,
		request.Units,
		request.UnitPrice,
		request.Amount,
		request.PaymentMethod,
		request.PaymentReference,
		request.Status,
		request.RejectionReason,
		request.CreatedAt,
		request.UpdatedAt,
		request.PaymentAt,
		request.DecidedAt,
		request.IssuedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TokenRequest, error) {
	var request domain.TokenRequest
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM token_requests WHERE id = ?`, id,
	).Scan(&request).Error
	if err != nil {
		return nil, err
	}
	if request.ID == 0 {
		return nil, nil
	}
	return &request, nil
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.TokenRequest, error) {
	var request domain.TokenRequest
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM token_requests WHERE payment_reference = ?`, reference,
	).Scan(&request).Error
	if err != nil {
		return nil, err
	}
	if request.ID == 0 {
		return nil, nil
	}
	return &request, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.TokenRequest, error) {
	var requests []*domain.TokenRequest
	stmt := db.WithContext(ctx).Model(&domain.TokenRequest{})
	if filter.VendorID != 0 {
		stmt = stmt.Where("vendor_id = ?", filter.VendorID)
	}
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN (?)", filter.Statuses)
	}
	if filter.MeterNumber != "" {
		stmt = stmt.Where("meter_number = ?", filter.MeterNumber)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (map[domain.Status]int64, error) {
	type row struct {
		Status domain.Status
		Total  int64
	}
	var rows []row
	err := db.WithContext(ctx).Raw(
		`SELECT status, COUNT(*) AS total FROM token_requests WHERE vendor_id = ? GROUP BY status`,
		vendorID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, request *domain.TokenRequest, from domain.Status) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE token_requests
		 SET status = ?, payment_method = ?, payment_reference = ?, rejection_reason = ?,
		     updated_at = ?, payment_at = ?, decided_at = ?, issued_at = ?
		 WHERE id = ? AND status = ?`,
		request.Status,
		request.PaymentMethod,
		request.PaymentReference,
		request.RejectionReason,
		request.UpdatedAt,
		request.PaymentAt,
		request.DecidedAt,
		request.IssuedAt,
		request.ID,
		from,
	)
	return result.RowsAffected > 0, result.Error
}
