package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, price *DiscoPrice) error
	FindByDisco(ctx context.Context, db *gorm.DB, disco string) (*DiscoPrice, error)
	List(ctx context.Context, db *gorm.DB) ([]*DiscoPrice, error)
}
