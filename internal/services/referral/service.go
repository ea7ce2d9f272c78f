// Package referral pays referrers a one-time fee on each completed deposit of
// the members they referred.
package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrReferredUserNotFound = apperrors.NotFound("REFERRED_USER_NOT_FOUND", "Referred user not found.")
	ErrNotReferrer          = apperrors.Forbidden("NOT_REFERRER", "This user was not referred by you.")
	ErrDepositNotEligible   = apperrors.NotFound("DEPOSIT_NOT_ELIGIBLE", "Deposit not found or not eligible for referral fees.")
	ErrReferralFeeExists    = apperrors.Business("REFERRAL_FEE_EXISTS", "Referral fees have already been generated for this deposit.")
	ErrNoActiveRate         = apperrors.Business("NO_ACTIVE_REFERRAL_RATE", "No active referral fee rate found.")
)

var hundred = decimal.NewFromInt(100)

// RateSource provides the active referral fee percentage.
type RateSource interface {
	ActiveRate(ctx context.Context, interestType string) (decimal.Decimal, bool, error)
}

// MetricsCollector defines the interface for collecting referral metrics
type MetricsCollector interface {
	RecordReferralFee(outcome string, amount decimal.Decimal)
}

type noopMetrics struct{}

func (noopMetrics) RecordReferralFee(string, decimal.Decimal) {}

// Result summarizes one generation run.
type Result struct {
	Created int
	Skipped int
	Total   decimal.Decimal
	Fees    []models.ReferralFee
}

// DepositRow is one referred member's deposit with the fee it earned.
type DepositRow struct {
	UserID           uint
	FirstName        string
	LastName         string
	TransactionID    uint
	DepositAmount    decimal.Decimal
	DepositStatus    string
	DepositCreatedAt time.Time
	ReferralFee      decimal.Decimal
	HasReferralFee   bool
}

// Report lists every referred deposit and the fees earned on completed ones.
type Report struct {
	Rows        []DepositRow
	TotalEarned decimal.Decimal
}

type Service struct {
	ledger  repositories.LedgerRepository
	users   repositories.UserRepository
	rates   RateSource
	metrics MetricsCollector
	logger  *zap.Logger
}

func NewService(
	ledger repositories.LedgerRepository,
	users repositories.UserRepository,
	rates RateSource,
	metrics MetricsCollector,
	logger *zap.Logger,
) *Service {
	if ledger == nil || users == nil || rates == nil {
		panic("referral service requires ledger, users and rates")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledger,
		users:   users,
		rates:   rates,
		metrics: metrics,
		logger:  logger.Named("referral"),
	}
}

func (s *Service) referred(ctx context.Context, referrerID, referredUserID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, referredUserID)
	if errors.Is(err, repositories.ErrUserNotFound) || errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrReferredUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load referred user: %w", err)
	}
	if user.ReferredBy == nil || *user.ReferredBy != referrerID {
		return nil, ErrNotReferrer
	}
	return user, nil
}

// GenerateForReferredUser records a fee for every completed deposit of the
// referred member that has none yet. A missing rate yields an empty result.
func (s *Service) GenerateForReferredUser(ctx context.Context, referrerID, referredUserID uint) (*Result, error) {
	if _, err := s.referred(ctx, referrerID, referredUserID); err != nil {
		return nil, err
	}

	result := &Result{Total: decimal.Zero}
	rate, found, err := s.rates.ActiveRate(ctx, models.InterestReferralFee)
	if err != nil {
		return nil, fmt.Errorf("load referral rate: %w", err)
	}
	if !found {
		s.logger.Info("no active referral fee rate", zap.Uint("referrer_id", referrerID))
		return result, nil
	}

	deposits, err := s.ledger.DepositsAwaitingReferralFee(ctx, referredUserID)
	if err != nil {
		return nil, fmt.Errorf("load eligible deposits: %w", err)
	}

	for _, dep := range deposits {
		fee := &models.ReferralFee{
			ReferrerID:     referrerID,
			ReferredUserID: referredUserID,
			TransactionID:  *dep.TransactionID,
			DepositAmount:  dep.Amount,
			FeeAmount:      Fee(dep.Amount, rate),
			Rate:           rate,
		}
		if err := s.ledger.CreateReferralFee(ctx, fee); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				result.Skipped++
				s.metrics.RecordReferralFee("skipped", decimal.Zero)
				continue
			}
			return nil, fmt.Errorf("create referral fee for transaction %d: %w", fee.TransactionID, err)
		}
		result.Created++
		result.Total = result.Total.Add(fee.FeeAmount)
		result.Fees = append(result.Fees, *fee)
		s.metrics.RecordReferralFee("created", fee.FeeAmount)
	}

	s.logger.Info("referral fees generated",
		zap.Uint("referrer_id", referrerID),
		zap.Uint("referred_user_id", referredUserID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// GenerateForDeposit records the fee for one deposit transaction.
func (s *Service) GenerateForDeposit(ctx context.Context, referrerID, referredUserID, transactionID uint) (*models.ReferralFee, error) {
	if _, err := s.referred(ctx, referrerID, referredUserID); err != nil {
		return nil, err
	}

	txn, err := s.ledger.GetTransaction(ctx, transactionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrDepositNotEligible
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if txn.UserID != referredUserID || txn.Type != models.TransactionTypeDeposit || txn.Status != models.StatusCompleted {
		return nil, ErrDepositNotEligible
	}

	exists, err := s.ledger.ReferralFeeExists(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("check referral fee: %w", err)
	}
	if exists {
		return nil, ErrReferralFeeExists
	}

	rate, found, err := s.rates.ActiveRate(ctx, models.InterestReferralFee)
	if err != nil {
		return nil, fmt.Errorf("load referral rate: %w", err)
	}
	if !found {
		return nil, ErrNoActiveRate
	}

	fee := &models.ReferralFee{
		ReferrerID:     referrerID,
		ReferredUserID: referredUserID,
		TransactionID:  transactionID,
		DepositAmount:  txn.Amount,
		FeeAmount:      Fee(txn.Amount, rate),
		Rate:           rate,
	}
	if err := s.ledger.CreateReferralFee(ctx, fee); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrReferralFeeExists
		}
		return nil, fmt.Errorf("create referral fee: %w", err)
	}
	s.metrics.RecordReferralFee("created", fee.FeeAmount)
	return fee, nil
}

// GenerateForDepositor is the hook run after a deposit completes. It credits
// the depositor's referrer, if any, and only logs failures.
func (s *Service) GenerateForDepositor(ctx context.Context, depositor *models.User) {
	if depositor == nil || depositor.ReferredBy == nil {
		return
	}
	if _, err := s.GenerateForReferredUser(ctx, *depositor.ReferredBy, depositor.ID); err != nil {
		s.logger.Error("automatic referral fee generation failed",
			zap.Uint("referrer_id", *depositor.ReferredBy),
			zap.Uint("referred_user_id", depositor.ID),
			zap.Error(err),
		)
	}
}

// ReferredDeposits reports deposit transactions of every member referred by
// referrerID.
func (s *Service) ReferredDeposits(ctx context.Context, referrerID uint) (*Report, error) {
	referred, err := s.users.ListReferred(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list referred users: %w", err)
	}
	fees, err := s.ledger.ListReferralFees(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list referral fees: %w", err)
	}
	byTxn := make(map[uint]models.ReferralFee, len(fees))
	for _, f := range fees {
		byTxn[f.TransactionID] = f
	}

	report := &Report{Rows: []DepositRow{}, TotalEarned: decimal.Zero}
	for _, u := range referred {
		txns, _, err := s.ledger.ListTransactions(ctx, repositories.TransactionFilter{
			UserID: u.ID,
			Type:   models.TransactionTypeDeposit,
		}, repositories.Page{})
		if err != nil {
			return nil, fmt.Errorf("list deposits of user %d: %w", u.ID, err)
		}
		for _, t := range txns {
			fee, ok := byTxn[t.ID]
			row := DepositRow{
				UserID:           u.ID,
				FirstName:        u.FirstName,
				LastName:         u.LastName,
				TransactionID:    t.ID,
				DepositAmount:    t.Amount,
				DepositStatus:    t.Status,
				DepositCreatedAt: t.CreatedAt,
				ReferralFee:      decimal.Zero,
				HasReferralFee:   ok,
			}
			if ok {
				row.ReferralFee = fee.FeeAmount
				if t.Status == models.StatusCompleted {
					report.TotalEarned = report.TotalEarned.Add(fee.FeeAmount)
				}
			}
			report.Rows = append(report.Rows, row)
		}
	}
	return report, nil
}

// Fee is amount * rate / 100 rounded to eight decimals.
func Fee(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(8)
}
