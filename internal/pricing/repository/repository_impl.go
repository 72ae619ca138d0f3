package repository

import (
	"context"

	"github.com/voltvend/voltvend/internal/pricing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, price *domain.DiscoPrice) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "disco"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_per_unit", "updated_at"}),
		}).
		Create(price).Error
}

func (r *repo) FindByDisco(ctx context.Context, db *gorm.DB, disco string) (*domain.DiscoPrice, error) {
	var price domain.DiscoPrice
	err := db.WithContext(ctx).Raw(
		`SELECT id, disco, price_per_unit, created_at, updated_at
		 FROM disco_prices WHERE disco = ?`,
		disco,
	).Scan(&price).Error
	if err != nil {
		return nil, err
	}
	if price.ID == 0 {
		return nil, nil
	}
	return &price, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.DiscoPrice, error) {
	var prices []*domain.DiscoPrice
	err := db.WithContext(ctx).
		Model(&domain.DiscoPrice{}).
		Order("disco asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
