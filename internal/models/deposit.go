package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger statuses shared by deposits, withdrawals and transactions.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Deposit is a user's funding request. Once completed only TransactionID may change.
type Deposit struct {
	ID              uint            `gorm:"primarykey"`
	UserID          uint            `gorm:"index;not null"`
	User            *User           `gorm:"foreignKey:UserID"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Status          string          `gorm:"index;not null;default:'pending'"`
	Network         string          `gorm:"not null"`
	ReferenceNumber string
	TransactionID   *uint `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCompleted reports whether the deposit accrues ROI.
func (d *Deposit) IsCompleted() bool {
	return d.Status == StatusCompleted
}
