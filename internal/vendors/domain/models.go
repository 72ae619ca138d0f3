package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Vendor struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name           string            `gorm:"not null" json:"name"`
	Email          string            `gorm:"not null;uniqueIndex" json:"email"`
	Approved       bool              `gorm:"not null;default:false" json:"approved"`
	CustomerLimit  int64             `gorm:"not null" json:"customer_limit"`
	CustomerCount  int64             `gorm:"not null;default:0" json:"customer_count"`
	PendingUpgrade bool              `gorm:"not null;default:false" json:"pending_upgrade"`
	Metadata       datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type UpgradeStatus string

const (
	UpgradeStatusPending UpgradeStatus = "PENDING"
	UpgradeStatusApplied UpgradeStatus = "APPLIED"
)

// UpgradeIntent is a priced request for additional customer slots.
// Amount is frozen when the intent is created.
type UpgradeIntent struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	VendorID        snowflake.ID  `gorm:"not null;index" json:"vendor_id"`
	AdditionalSlots int64         `gorm:"not null" json:"additional_slots"`
	UnitPrice       int64         `gorm:"not null" json:"unit_price"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Status          UpgradeStatus `gorm:"not null" json:"status"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	AppliedAt       *time.Time    `json:"applied_at,omitempty"`
}

func (UpgradeIntent) TableName() string {
	return "vendor_upgrades"
}
