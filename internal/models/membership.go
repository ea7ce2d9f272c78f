package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MembershipFee struct {
	ID              uint            `gorm:"primarykey"`
	UserID          uint            `gorm:"index;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Network         string          `gorm:"not null"`
	WalletAddress   string          `gorm:"not null"`
	Status          string          `gorm:"not null;default:'pending'"`
	ReferenceNumber string          `gorm:"uniqueIndex"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
