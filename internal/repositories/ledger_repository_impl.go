package repositories

import (
	"context"
	"fmt"
	"time"

	"investa/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

func (r *ledgerRepository) LockUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", userID, translate(err))
	}
	return &user, nil
}

// userSearch restricts a query on a table with a user_id column to rows whose
// owner or reference matches term.
func userSearch(db *gorm.DB, term string, refColumns ...string) *gorm.DB {
	if term == "" {
		return db
	}
	like := "%" + term + "%"
	users := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.User{}).
		Select("id").
		Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", like, like, like)

	cond := db.Session(&gorm.Session{NewDB: true}).Where("user_id IN (?)", users)
	for _, col := range refColumns {
		cond = cond.Or(col+" ILIKE ?", like)
	}
	return db.Where(cond)
}

func sumAmount(db *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := db.Select("COALESCE(SUM(" + column + "), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Deposits

func (r *ledgerRepository) CreateDeposit(ctx context.Context, d *models.Deposit) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create deposit: %w", translate(err))
	}
	return nil
}

func (r *ledgerRepository) GetDeposit(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	if err := r.db.WithContext(ctx).Preload("User").First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *ledgerRepository) GetDepositForUpdate(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *ledgerRepository) UpdateDeposit(ctx context.Context, d *models.Deposit) error {
	err := r.db.WithContext(ctx).Model(d).Select("Status", "ReferenceNumber", "TransactionID").Updates(d).Error
	if err != nil {
		return fmt.Errorf("failed to update deposit %d: %w", d.ID, translate(err))
	}
	return nil
}

func (r *ledgerRepository) ListCompletedDeposits(ctx context.Context) ([]models.Deposit, error) {
	var deposits []models.Deposit
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusCompleted).
		Order("id").
		Find(&deposits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list completed deposits: %w", err)
	}
	return deposits, nil
}

func (r *ledgerRepository) depositQuery(ctx context.Context, f DepositFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Deposit{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return userSearch(q, f.Search, "reference_number", "network")
}

func (r *ledgerRepository) ListDeposits(ctx context.Context, f DepositFilter, p Page) ([]models.Deposit, int64, error) {
	var total int64
	if err := r.depositQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count deposits: %w", err)
	}

	var deposits []models.Deposit
	err := p.apply(r.depositQuery(ctx, f).Preload("User").Order("created_at DESC, id DESC")).
		Find(&deposits).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deposits: %w", err)
	}
	return deposits, total, nil
}

func (r *ledgerRepository) SumDeposits(ctx context.Context, f DepositFilter) (decimal.Decimal, error) {
	total, err := sumAmount(r.depositQuery(ctx, f), "amount")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum deposits: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) DepositsAwaitingReferralFee(ctx context.Context, userID uint) ([]models.Deposit, error) {
	var deposits []models.Deposit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND transaction_id IS NOT NULL", userID, models.StatusCompleted).
		Where("NOT EXISTS (SELECT 1 FROM referral_fees rf WHERE rf.transaction_id = deposits.transaction_id)").
		Order("id").
		Find(&deposits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits awaiting referral fee: %w", err)
	}
	return deposits, nil
}

// Transactions

func (r *ledgerRepository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", translate(err))
	}
	return nil
}

func (r *ledgerRepository) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *ledgerRepository) transactionQuery(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return userSearch(q, f.Search, "reference_number", "network")
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, f TransactionFilter, p Page) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.transactionQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err := p.apply(r.transactionQuery(ctx, f).Preload("User").Order("date DESC, id DESC")).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *ledgerRepository) SumTransactions(ctx context.Context, f TransactionFilter) (decimal.Decimal, error) {
	total, err := sumAmount(r.transactionQuery(ctx, f), "amount")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// Withdrawals

func (r *ledgerRepository) CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", translate(err))
	}
	return nil
}

func (r *ledgerRepository) GetWithdrawalForUpdate(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *ledgerRepository) UpdateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	err := r.db.WithContext(ctx).Model(w).
		Select("Status", "TransactionID", "ProcessedBy", "ProcessedAt").
		Updates(w).Error
	if err != nil {
		return fmt.Errorf("failed to update withdrawal %d: %w", w.ID, translate(err))
	}
	return nil
}

func (r *ledgerRepository) FindPendingWithdrawal(ctx context.Context, userID uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusPending).
		First(&w).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *ledgerRepository) withdrawalQuery(ctx context.Context, f WithdrawalFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return userSearch(q, f.Search, "reference_number", "network")
}

func (r *ledgerRepository) ListWithdrawals(ctx context.Context, f WithdrawalFilter, p Page) ([]models.Withdrawal, int64, error) {
	var total int64
	if err := r.withdrawalQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	var ws []models.Withdrawal
	err := p.apply(r.withdrawalQuery(ctx, f).Preload("User").Order("created_at DESC, id DESC")).
		Find(&ws).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return ws, total, nil
}

func (r *ledgerRepository) SumWithdrawals(ctx context.Context, f WithdrawalFilter) (decimal.Decimal, error) {
	total, err := sumAmount(r.withdrawalQuery(ctx, f), "amount")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	return total, nil
}

// Daily ROI

func (r *ledgerRepository) DailyROIExists(ctx context.Context, depositID uint, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DailyROI{}).
		Where("deposit_id = ? AND date = ?", depositID, datatypes.Date(date)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check daily roi: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) AnyDailyROIOn(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DailyROI{}).
		Where("date = ?", datatypes.Date(date)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check daily roi date: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) CreateDailyROI(ctx context.Context, roi *models.DailyROI) error {
	if err := r.db.WithContext(ctx).Create(roi).Error; err != nil {
		return fmt.Errorf("failed to create daily roi: %w", translate(err))
	}
	return nil
}

func (r *ledgerRepository) SumDailyROI(ctx context.Context, userID uint) (decimal.Decimal, error) {
	total, err := sumAmount(r.db.WithContext(ctx).Model(&models.DailyROI{}).Where("user_id = ?", userID), "amount")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum daily roi: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) ListDailyROIs(ctx context.Context, f ROIFilter, p Page) ([]models.DailyROI, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.DailyROI{})
		if f.UserID != 0 {
			q = q.Where("user_id = ?", f.UserID)
		}
		return userSearch(q, f.Search)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count daily roi: %w", err)
	}

	var rois []models.DailyROI
	err := p.apply(query().Preload("User").Preload("Deposit").Order("date DESC, id DESC")).
		Find(&rois).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list daily roi: %w", err)
	}
	return rois, total, nil
}

// Referral fees

func (r *ledgerRepository) ReferralFeeExists(ctx context.Context, transactionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReferralFee{}).
		Where("transaction_id = ?", transactionID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check referral fee: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) CreateReferralFee(ctx context.Context, f *models.ReferralFee) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to create referral fee: %w", translate(err))
	}
	return nil
}

func (r *ledgerRepository) SumReferralFees(ctx context.Context, referrerID uint) (decimal.Decimal, error) {
	total, err := sumAmount(r.db.WithContext(ctx).Model(&models.ReferralFee{}).Where("referrer_id = ?", referrerID), "fee_amount")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum referral fees: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) ListReferralFees(ctx context.Context, referrerID uint) ([]models.ReferralFee, error) {
	var fees []models.ReferralFee
	err := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("id").
		Find(&fees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list referral fees: %w", err)
	}
	return fees, nil
}
