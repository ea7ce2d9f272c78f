package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction types. Withdrawals are always tagged "withdrawal".
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
)

// Transaction mirrors a completed deposit or withdrawal. It is the record
// the balance calculation debits withdrawals from.
type Transaction struct {
	ID              uint            `gorm:"primarykey"`
	UserID          uint            `gorm:"index;not null"`
	User            *User           `gorm:"foreignKey:UserID"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Type            string          `gorm:"index;not null"`
	Status          string          `gorm:"index;not null;default:'pending'"`
	Network         string
	ReferenceNumber string
	Date            datatypes.Date `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
