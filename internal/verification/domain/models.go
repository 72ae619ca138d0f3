package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Verification holds the key material a meter needs before tokens can be
// issued for it. A record is verified only when all eight fields are set.
type Verification struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;uniqueIndex" json:"customer_id"`
	MeterNumber string      `gorm:"not null;index" json:"meter_number"`

	IsVerified      bool       `gorm:"not null;default:false" json:"is_verified"`
	Rejected        bool       `gorm:"not null;default:false" json:"rejected"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	VerifiedBy      string     `json:"verified_by,omitempty"`

	KRN  string `gorm:"column:krn" json:"krn,omitempty"`
	SGC  string `gorm:"column:sgc" json:"sgc,omitempty"`
	TI   string `gorm:"column:ti" json:"ti,omitempty"`
	MSN  string `gorm:"column:msn" json:"msn,omitempty"`
	MTK1 string `gorm:"column:mtk1" json:"mtk1,omitempty"`
	MTK2 string `gorm:"column:mtk2" json:"mtk2,omitempty"`
	RTK1 string `gorm:"column:rtk1" json:"rtk1,omitempty"`
	RTK2 string `gorm:"column:rtk2" json:"rtk2,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Masked strips key material from unverified records for reads.
func (v Verification) Masked() Verification {
	if v.IsVerified {
		return v
	}
	v.KRN, v.SGC, v.TI, v.MSN = "", "", "", ""
	v.MTK1, v.MTK2, v.RTK1, v.RTK2 = "", "", "", ""
	return v
}
