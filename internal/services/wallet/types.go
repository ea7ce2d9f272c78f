package wallet

import (
	"github.com/shopspring/decimal"
)

// WalletConfig holds configuration for wallet operations
type WalletConfig struct {
	MinWithdrawal decimal.Decimal
}

// BalanceBreakdown exposes the components of the derived balance.
type BalanceBreakdown struct {
	ROI          decimal.Decimal
	ReferralFees decimal.Decimal
	Withdrawn    decimal.Decimal
	Available    decimal.Decimal
}

// RecordInput is an admin-entered withdrawal for a member.
type RecordInput struct {
	UserID          uint
	Amount          decimal.Decimal
	Network         string
	Status          string
	ReferenceNumber string
}

// ListFilter narrows withdrawal listings.
type ListFilter struct {
	UserID uint
	Status string
	Search string
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordWithdrawal(event string, amount decimal.Decimal)
	RecordError(operation, errType string)
}
