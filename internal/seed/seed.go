package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	"gorm.io/gorm"
)

// Default vending rate for discos that have never been priced, in kobo.
const defaultPricePerUnit = 5000

// EnsureDefaultDiscoPrices seeds a price row for every known disco so a
// fresh install can vend immediately. Existing rows are left alone.
func EnsureDefaultDiscoPrices(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, disco := range pricingdomain.Discos {
			var existing pricingdomain.DiscoPrice
			err := tx.WithContext(ctx).
				Where("disco = ?", disco).
				Limit(1).
				Find(&existing).Error
			if err != nil {
				return err
			}
			if existing.ID != 0 {
				continue
			}

			now := time.Now().UTC()
			price := pricingdomain.DiscoPrice{
				ID:           node.Generate(),
				Disco:        disco,
				PricePerUnit: defaultPricePerUnit,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&price).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
