package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Token is one issued credit token. At most one token exists per request.
type Token struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	TokenRequestID snowflake.ID `gorm:"not null;uniqueIndex" json:"token_request_id"`
	VendorID       snowflake.ID `gorm:"not null;index" json:"vendor_id"`
	CustomerID     snowflake.ID `gorm:"not null;index" json:"customer_id"`
	MeterNumber    string       `gorm:"not null;index" json:"meter_number"`
	Disco          string       `gorm:"not null" json:"disco"`
	Value          string       `gorm:"not null" json:"value"`
	MSN            string       `gorm:"column:msn" json:"msn,omitempty"`
	Units          int64        `gorm:"not null" json:"units"`
	Amount         int64        `gorm:"not null" json:"amount"`
	IssuedAt       time.Time    `gorm:"not null" json:"issued_at"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

var tokenValuePattern = regexp.MustCompile(`^[0-9-]+$`)

// ValidValue reports whether value is a well-formed token: digits and
// hyphens only, carrying 16 to 46 digits once hyphens are stripped.
func ValidValue(value string) bool {
	if value == "" || !tokenValuePattern.MatchString(value) {
		return false
	}
	digits := len(strings.ReplaceAll(value, "-", ""))
	return digits >= 16 && digits <= 46
}
