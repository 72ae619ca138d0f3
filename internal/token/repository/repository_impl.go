package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/pkg/db/option"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, token *domain.Token) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tokens (id, token_request_id, vendor_id, customer_id, meter_number, disco, value, msn, units, amount, issued_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		token.ID,
		token.TokenRequestID,
		token.VendorID,
		token.CustomerID,
		token.MeterNumber,
		token.Disco,
		token.Value,
		token.MSN,
		token.Units,
		token.Amount,
		token.IssuedAt,
		token.CreatedAt,
	).Error
}

func (r *repo) FindByRequestID(ctx context.Context, db *gorm.DB, requestID snowflake.ID) (*domain.Token, error) {
	var token domain.Token
	err := db.WithContext(ctx).Raw(
		`SELECT id, token_request_id, vendor_id, customer_id, meter_number, disco, value, msn, units, amount, issued_at, created_at
		 FROM tokens WHERE token_request_id = ?`,
		requestID,
	).Scan(&token).Error
	if err != nil {
		return nil, err
	}
	if token.ID == 0 {
		return nil, nil
	}
	return &token, nil
}

func (r *repo) ListByMeter(ctx context.Context, db *gorm.DB, filter domain.ListTokenFilter, page pagination.Pagination) ([]*domain.Token, error) {
	var tokens []*domain.Token
	stmt := db.WithContext(ctx).
		Model(&domain.Token{}).
		Where("meter_number = ?", filter.MeterNumber)
	if filter.VendorID != 0 {
		stmt = stmt.Where("vendor_id = ?", filter.VendorID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
