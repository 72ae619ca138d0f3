package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/customer/domain"
	"github.com/voltvend/voltvend/pkg/db/option"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, vendor_id, meter_number, disco, name, address, phone, last_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.VendorID,
		customer.MeterNumber,
		customer.Disco,
		customer.Name,
		customer.Address,
		customer.Phone,
		customer.LastToken,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, vendor_id, meter_number, disco, name, address, phone, last_token, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) FindByMeter(ctx context.Context, db *gorm.DB, disco, meterNumber string) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, vendor_id, meter_number, disco, name, address, phone, last_token, created_at, updated_at
		 FROM customers WHERE disco = ? AND meter_number = ?`,
		disco, meterNumber,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	if filter.VendorID != 0 {
		stmt = stmt.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Disco != "" {
		stmt = stmt.Where("disco = ?", filter.Disco)
	}
	if filter.MeterNumber != "" {
		stmt = stmt.Where("meter_number = ?", filter.MeterNumber)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) UpdateLastToken(ctx context.Context, db *gorm.DB, id snowflake.ID, token string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET last_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), id,
	).Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("vendor_id = ?", vendorID).
		Count(&count).Error
	return count, err
}
