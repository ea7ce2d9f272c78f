package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralFee is the one-time reward for a referred user's completed deposit.
// TransactionID is the deposit's mirrored transaction and is unique.
type ReferralFee struct {
	ID             uint            `gorm:"primarykey"`
	ReferrerID     uint            `gorm:"index;not null"`
	ReferredUserID uint            `gorm:"index;not null"`
	TransactionID  uint            `gorm:"uniqueIndex;not null"`
	DepositAmount  decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	FeeAmount      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Rate           decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
