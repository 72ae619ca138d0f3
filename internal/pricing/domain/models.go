package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DiscoPrice is the vending rate for one distribution company.
// PricePerUnit is in kobo per unit.
type DiscoPrice struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Disco        string       `gorm:"not null;uniqueIndex" json:"disco"`
	PricePerUnit int64        `gorm:"not null" json:"price_per_unit"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Discos lists the known distribution companies.
var Discos = []string{"ABA", "IKEDC", "IBEDC", "AEDC", "BEDC", "EEDC"}

// ValidDisco reports whether disco names a known distribution company.
func ValidDisco(disco string) bool {
	for _, known := range Discos {
		if known == disco {
			return true
		}
	}
	return false
}
