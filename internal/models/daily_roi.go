package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DailyROI is one day's interest on one deposit.
type DailyROI struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"index;not null"`
	User      *User           `gorm:"foreignKey:UserID"`
	DepositID uint            `gorm:"not null;uniqueIndex:idx_daily_roi_deposit_date"`
	Deposit   *Deposit        `gorm:"foreignKey:DepositID"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Rate      decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	Date      datatypes.Date  `gorm:"not null;index;uniqueIndex:idx_daily_roi_deposit_date"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DailyROI) TableName() string {
	return "daily_rois"
}
