package repositories

import (
	"context"
	"time"

	"investa/internal/models"

	"github.com/shopspring/decimal"
)

// DepositFilter narrows deposit queries. Zero values match everything.
type DepositFilter struct {
	UserID uint
	Status string
	Search string
}

// TransactionFilter narrows transaction queries. Zero values match everything.
type TransactionFilter struct {
	UserID uint
	Type   string
	Status string
	Search string
}

// WithdrawalFilter narrows withdrawal queries. Zero values match everything.
type WithdrawalFilter struct {
	UserID uint
	Status string
	Search string
}

// ROIFilter narrows daily ROI queries. Zero values match everything.
type ROIFilter struct {
	UserID uint
	Search string
}

// LedgerRepository persists every money-moving record: deposits, their
// mirrored transactions, withdrawals, daily ROI entries and referral fees.
type LedgerRepository interface {
	// WithTx runs fn in a single database transaction. Returning an error
	// from fn rolls back every write made through the repository it receives.
	WithTx(ctx context.Context, fn func(LedgerRepository) error) error
	// LockUser takes a row lock on the user for the rest of the transaction.
	LockUser(ctx context.Context, userID uint) (*models.User, error)

	CreateDeposit(ctx context.Context, d *models.Deposit) error
	GetDeposit(ctx context.Context, id uint) (*models.Deposit, error)
	GetDepositForUpdate(ctx context.Context, id uint) (*models.Deposit, error)
	UpdateDeposit(ctx context.Context, d *models.Deposit) error
	ListCompletedDeposits(ctx context.Context) ([]models.Deposit, error)
	ListDeposits(ctx context.Context, f DepositFilter, p Page) ([]models.Deposit, int64, error)
	SumDeposits(ctx context.Context, f DepositFilter) (decimal.Decimal, error)
	// DepositsAwaitingReferralFee returns the user's completed deposits that
	// have a linked transaction but no referral fee recorded for it.
	DepositsAwaitingReferralFee(ctx context.Context, userID uint) ([]models.Deposit, error)

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter, p Page) ([]models.Transaction, int64, error)
	SumTransactions(ctx context.Context, f TransactionFilter) (decimal.Decimal, error)

	CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error
	GetWithdrawalForUpdate(ctx context.Context, id uint) (*models.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, w *models.Withdrawal) error
	// FindPendingWithdrawal returns ErrNotFound when the user has none.
	FindPendingWithdrawal(ctx context.Context, userID uint) (*models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, f WithdrawalFilter, p Page) ([]models.Withdrawal, int64, error)
	SumWithdrawals(ctx context.Context, f WithdrawalFilter) (decimal.Decimal, error)

	DailyROIExists(ctx context.Context, depositID uint, date time.Time) (bool, error)
	AnyDailyROIOn(ctx context.Context, date time.Time) (bool, error)
	CreateDailyROI(ctx context.Context, r *models.DailyROI) error
	SumDailyROI(ctx context.Context, userID uint) (decimal.Decimal, error)
	ListDailyROIs(ctx context.Context, f ROIFilter, p Page) ([]models.DailyROI, int64, error)

	ReferralFeeExists(ctx context.Context, transactionID uint) (bool, error)
	CreateReferralFee(ctx context.Context, f *models.ReferralFee) error
	SumReferralFees(ctx context.Context, referrerID uint) (decimal.Decimal, error)
	ListReferralFees(ctx context.Context, referrerID uint) ([]models.ReferralFee, error)
}
