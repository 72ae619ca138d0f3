package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a prepaid meter owner registered under a vendor.
// A meter number is unique within its disco.
type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VendorID    snowflake.ID `gorm:"not null;index" json:"vendor_id"`
	MeterNumber string       `gorm:"not null;uniqueIndex:idx_customers_disco_meter" json:"meter_number"`
	Disco       string       `gorm:"not null;uniqueIndex:idx_customers_disco_meter" json:"disco"`
	Name        string       `json:"name,omitempty"`
	Address     string       `json:"address,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	LastToken   string       `json:"last_token,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
