package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/utils"
	"investa/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var defaultMinWithdrawal = decimal.NewFromInt(10)

type Service struct {
	ledger  repositories.LedgerRepository
	config  WalletConfig
	metrics MetricsCollector
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new wallet service
func NewService(
	ledger repositories.LedgerRepository,
	config WalletConfig,
	metrics MetricsCollector,
	logger *zap.Logger,
) *Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	if config.MinWithdrawal.IsZero() {
		config.MinWithdrawal = defaultMinWithdrawal
	}
	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		ledger:  ledger,
		config:  config,
		metrics: metrics,
		logger:  logger.Named("wallet"),
		now:     time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Balance returns the member's withdrawable balance.
func (s *Service) Balance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	b, err := breakdown(ctx, s.ledger, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Available, nil
}

// BalanceBreakdown returns the balance together with its components.
func (s *Service) BalanceBreakdown(ctx context.Context, userID uint) (*BalanceBreakdown, error) {
	return breakdown(ctx, s.ledger, userID)
}

func breakdown(ctx context.Context, ledger repositories.LedgerRepository, userID uint) (*BalanceBreakdown, error) {
	roi, err := ledger.SumDailyROI(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum roi: %w", err)
	}
	fees, err := ledger.SumReferralFees(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum referral fees: %w", err)
	}
	withdrawn, err := ledger.SumTransactions(ctx, repositories.TransactionFilter{
		UserID: userID,
		Type:   models.TransactionTypeWithdrawal,
		Status: models.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("sum withdrawals: %w", err)
	}

	available := roi.Add(fees).Sub(withdrawn)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &BalanceBreakdown{
		ROI:          roi,
		ReferralFees: fees,
		Withdrawn:    withdrawn,
		Available:    available,
	}, nil
}

// RequestWithdrawal opens a pending withdrawal for the member.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal, network string) (*models.Withdrawal, error) {
	v := validation.New()
	v.DecimalMin("amount", amount, s.config.MinWithdrawal)
	v.Required("network", network)
	v.MaxLength("network", network, validation.MaxReferenceLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var withdrawal *models.Withdrawal
	err := s.ledger.WithTx(ctx, func(tx repositories.LedgerRepository) error {
		if _, err := tx.LockUser(ctx, userID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrUserNotFound
			}
			return err
		}

		if err := ensureNoPending(ctx, tx, userID); err != nil {
			return err
		}
		if err := ensureBalance(ctx, tx, userID, amount); err != nil {
			return err
		}

		withdrawal = &models.Withdrawal{
			UserID:          userID,
			Amount:          amount,
			Status:          models.StatusPending,
			Network:         strings.TrimSpace(network),
			ReferenceNumber: utils.NewReference(ReferencePrefix),
		}
		if err := tx.CreateWithdrawal(ctx, withdrawal); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrPendingWithdrawalExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.observeRejection("request_withdrawal", err)
		return nil, err
	}

	s.metrics.RecordWithdrawal(EventRequested, amount)
	s.logger.Info("withdrawal requested",
		zap.Uint("user_id", userID),
		zap.Uint("withdrawal_id", withdrawal.ID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return withdrawal, nil
}

// ProcessWithdrawal moves a pending withdrawal to completed or failed.
func (s *Service) ProcessWithdrawal(ctx context.Context, admin models.Actor, withdrawalID uint, status string) (*models.Withdrawal, error) {
	if !admin.IsAdmin() {
		return nil, apperrors.ErrAdminOnly
	}
	v := validation.New()
	v.OneOf("status", status, models.StatusCompleted, models.StatusFailed)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var withdrawal *models.Withdrawal
	err := s.ledger.WithTx(ctx, func(tx repositories.LedgerRepository) error {
		w, err := tx.GetWithdrawalForUpdate(ctx, withdrawalID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrWithdrawalNotFound
		}
		if err != nil {
			return err
		}
		if !w.IsPending() {
			return ErrWithdrawalProcessed
		}

		if err := s.settle(ctx, tx, w, admin, status); err != nil {
			return err
		}
		if err := tx.UpdateWithdrawal(ctx, w); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		s.observeRejection("process_withdrawal", err)
		return nil, err
	}

	s.metrics.RecordWithdrawal(processEvent(status), withdrawal.Amount)
	s.logger.Info("withdrawal processed",
		zap.Uint("withdrawal_id", withdrawal.ID),
		zap.Uint("admin_id", admin.UserID),
		zap.String("status", status),
	)
	return withdrawal, nil
}

func processEvent(status string) string {
	if status == models.StatusCompleted {
		return EventCompleted
	}
	return EventFailed
}

// RecordWithdrawal stores an admin-entered withdrawal for a member. Pending and
// completed records obey the same guards as member requests.
func (s *Service) RecordWithdrawal(ctx context.Context, admin models.Actor, in RecordInput) (*models.Withdrawal, error) {
	if !admin.IsAdmin() {
		return nil, apperrors.ErrAdminOnly
	}
	v := validation.New()
	v.Check(in.UserID != 0, "user_id", "The user id field is required.")
	v.Check(in.Amount.IsPositive(), "amount", "The amount must be greater than 0.")
	v.Required("network", in.Network)
	v.MaxLength("network", in.Network, validation.MaxReferenceLength)
	v.OneOf("status", in.Status, models.StatusPending, models.StatusCompleted, models.StatusFailed)
	if err := v.Err(); err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(in.ReferenceNumber)
	if reference == "" {
		reference = utils.NewReference(ReferencePrefix)
	}

	var withdrawal *models.Withdrawal
	err := s.ledger.WithTx(ctx, func(tx repositories.LedgerRepository) error {
		if _, err := tx.LockUser(ctx, in.UserID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.Field("user_id", "The selected user id is invalid.")
			}
			return err
		}

		if in.Status != models.StatusFailed {
			if err := ensureNoPending(ctx, tx, in.UserID); err != nil {
				return err
			}
			if err := ensureBalance(ctx, tx, in.UserID, in.Amount); err != nil {
				return err
			}
		}

		w := &models.Withdrawal{
			UserID:          in.UserID,
			Amount:          in.Amount,
			Status:          models.StatusPending,
			Network:         strings.TrimSpace(in.Network),
			ReferenceNumber: reference,
		}
		if in.Status == models.StatusPending {
			if err := tx.CreateWithdrawal(ctx, w); err != nil {
				if errors.Is(err, repositories.ErrDuplicate) {
					return ErrPendingWithdrawalExists
				}
				return err
			}
			withdrawal = w
			return nil
		}

		// created already settled, so it never occupies the pending slot
		if err := s.settle(ctx, tx, w, admin, in.Status); err != nil {
			return err
		}
		if err := tx.CreateWithdrawal(ctx, w); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		s.observeRejection("record_withdrawal", err)
		return nil, err
	}

	s.metrics.RecordWithdrawal(EventRecorded, withdrawal.Amount)
	s.logger.Info("withdrawal recorded",
		zap.Uint("withdrawal_id", withdrawal.ID),
		zap.Uint("user_id", withdrawal.UserID),
		zap.Uint("admin_id", admin.UserID),
		zap.String("status", withdrawal.Status),
	)
	return withdrawal, nil
}

// settle applies a final status to w. A completed withdrawal gets its
// mirrored transaction here, inside the caller's transaction.
func (s *Service) settle(ctx context.Context, tx repositories.LedgerRepository, w *models.Withdrawal, admin models.Actor, status string) error {
	now := s.now()
	if status == models.StatusCompleted {
		txn := &models.Transaction{
			UserID:          w.UserID,
			Amount:          w.Amount,
			Type:            models.TransactionTypeWithdrawal,
			Status:          models.StatusCompleted,
			Network:         w.Network,
			ReferenceNumber: w.ReferenceNumber,
			Date:            datatypes.Date(now),
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("mirror withdrawal transaction: %w", err)
		}
		w.TransactionID = &txn.ID
	}

	adminID := admin.UserID
	w.Status = status
	w.ProcessedBy = &adminID
	w.ProcessedAt = &now
	return nil
}

func ensureNoPending(ctx context.Context, tx repositories.LedgerRepository, userID uint) error {
	_, err := tx.FindPendingWithdrawal(ctx, userID)
	switch {
	case err == nil:
		return ErrPendingWithdrawalExists
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check pending withdrawal: %w", err)
	}
}

func ensureBalance(ctx context.Context, tx repositories.LedgerRepository, userID uint, amount decimal.Decimal) error {
	b, err := breakdown(ctx, tx, userID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(b.Available) {
		return ErrInsufficientBalance.WithMessage("Insufficient balance. Available: %s", utils.Money(b.Available))
	}
	return nil
}

func (s *Service) observeRejection(operation string, err error) {
	if de, ok := apperrors.AsDomain(err); ok {
		s.metrics.RecordWithdrawal(EventRejected, decimal.Zero)
		s.metrics.RecordError(operation, de.Code)
		return
	}
	if _, ok := apperrors.AsValidation(err); ok {
		s.metrics.RecordError(operation, "validation")
		return
	}
	s.metrics.RecordError(operation, "internal")
}

// ListWithdrawals pages withdrawals, newest first.
func (s *Service) ListWithdrawals(ctx context.Context, f ListFilter, p repositories.Page) ([]models.Withdrawal, int64, error) {
	return s.ledger.ListWithdrawals(ctx, repositories.WithdrawalFilter{
		UserID: f.UserID,
		Status: f.Status,
		Search: f.Search,
	}, p)
}

// PendingTotal sums every pending withdrawal.
func (s *Service) PendingTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.ledger.SumWithdrawals(ctx, repositories.WithdrawalFilter{Status: models.StatusPending})
}

// ListTransactions pages a member's deposit and withdrawal transactions.
func (s *Service) ListTransactions(ctx context.Context, userID uint, search string, p repositories.Page) ([]models.Transaction, int64, error) {
	return s.ledger.ListTransactions(ctx, repositories.TransactionFilter{UserID: userID, Search: search}, p)
}

// ListROI pages daily ROI entries. userID zero lists every member.
func (s *Service) ListROI(ctx context.Context, userID uint, search string, p repositories.Page) ([]models.DailyROI, int64, error) {
	return s.ledger.ListDailyROIs(ctx, repositories.ROIFilter{UserID: userID, Search: search}, p)
}

// SearchTransactions pages transactions across members for the admin views.
func (s *Service) SearchTransactions(ctx context.Context, f repositories.TransactionFilter, p repositories.Page) ([]models.Transaction, int64, error) {
	if f.Status == "all" {
		f.Status = ""
	}
	return s.ledger.ListTransactions(ctx, f, p)
}
