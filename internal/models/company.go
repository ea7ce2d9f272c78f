package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interest types and statuses
const (
	InterestDailyInvestment = "daily_investment"
	InterestReferralFee     = "referral_fee"

	InterestActive   = "active"
	InterestInactive = "inactive"
)

// CompanyInterest is a configured percentage rate keyed by type.
type CompanyInterest struct {
	ID         uint            `gorm:"primarykey"`
	Type       string          `gorm:"uniqueIndex;not null"`
	Percentage decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	Status     string          `gorm:"not null;default:'inactive'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the rate should be applied.
func (c *CompanyInterest) IsActive() bool {
	return c.Status == InterestActive
}

// CompanyWallet is the deposit destination address for a network.
type CompanyWallet struct {
	ID        uint   `gorm:"primarykey"`
	Network   string `gorm:"index;not null"`
	Address   string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
