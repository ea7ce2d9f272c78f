package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal is a payout request. The partial unique index keeps a single
// pending request per user even if the service-level lock is bypassed.
type Withdrawal struct {
	ID              uint            `gorm:"primarykey"`
	UserID          uint            `gorm:"not null;index;uniqueIndex:idx_withdrawals_one_pending,where:status = 'pending'"`
	User            *User           `gorm:"foreignKey:UserID"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Status          string          `gorm:"index;not null;default:'pending'"`
	Network         string          `gorm:"not null"`
	ReferenceNumber string
	TransactionID   *uint
	ProcessedBy     *uint
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPending reports whether the withdrawal still awaits an admin decision.
func (w *Withdrawal) IsPending() bool {
	return w.Status == StatusPending
}
