// Package deposit handles member deposits and their admin status transitions.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var minDeposit = decimal.RequireFromString("0.01")

// ReferralHook is notified after a deposit completes.
type ReferralHook interface {
	GenerateForDepositor(ctx context.Context, depositor *models.User)
}

// Config controls deposit admission.
type Config struct {
	RequireMembership bool
}

type Service struct {
	ledger   repositories.LedgerRepository
	users    repositories.UserRepository
	wallets  repositories.CompanyWalletRepository
	referral ReferralHook
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(
	ledger repositories.LedgerRepository,
	users repositories.UserRepository,
	wallets repositories.CompanyWalletRepository,
	referral ReferralHook,
	config Config,
	logger *zap.Logger,
) *Service {
	if ledger == nil || users == nil || wallets == nil {
		panic("deposit service requires ledger, users and wallets")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:   ledger,
		users:    users,
		wallets:  wallets,
		referral: referral,
		config:   config,
		logger:   logger.Named("deposit"),
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create records a pending deposit. The reference number is added later by
// the member once the payment is sent.
func (s *Service) Create(ctx context.Context, userID uint, amount decimal.Decimal, network string) (*models.Deposit, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.config.RequireMembership && !user.MembershipFeePaid {
		return nil, ErrMembershipUnpaid
	}

	network = strings.TrimSpace(network)
	v := validation.New()
	v.Required("network", network)
	v.DecimalMin("amount", amount, minDeposit)
	if v.Valid() {
		_, err := s.wallets.FindByNetwork(ctx, network)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			v.AddError("network", "The selected network is invalid.")
		case err != nil:
			return nil, fmt.Errorf("look up network: %w", err)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	dep := &models.Deposit{
		UserID:  userID,
		Amount:  amount,
		Status:  models.StatusPending,
		Network: network,
	}
	if err := s.ledger.CreateDeposit(ctx, dep); err != nil {
		return nil, fmt.Errorf("create deposit: %w", err)
	}
	s.logger.Info("deposit created",
		zap.Uint("user_id", userID),
		zap.Uint("deposit_id", dep.ID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return dep, nil
}

// UpdateReference sets the payment reference of the member's pending deposit.
func (s *Service) UpdateReference(ctx context.Context, userID, depositID uint, reference string) (*models.Deposit, error) {
	reference = strings.TrimSpace(reference)
	v := validation.New()
	v.Required("reference_number", reference)
	v.MaxLength("reference_number", reference, validation.MaxReferenceLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var dep *models.Deposit
	err := s.ledger.WithTx(ctx, func(tx repositories.LedgerRepository) error {
		d, err := tx.GetDepositForUpdate(ctx, depositID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDepositNotOwned
		}
		if err != nil {
			return err
		}
		if d.UserID != userID {
			return ErrDepositNotOwned
		}
		if d.Status != models.StatusPending {
			return ErrDepositNotPending
		}
		d.ReferenceNumber = reference
		if err := tx.UpdateDeposit(ctx, d); err != nil {
			return err
		}
		dep = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dep, nil
}

// UpdateStatus is the admin transition of a deposit. Completing it mirrors a
// deposit transaction in the same database transaction and then credits the
// depositor's referrer.
func (s *Service) UpdateStatus(ctx context.Context, admin models.Actor, depositID uint, status string) (*models.Deposit, error) {
	if !admin.IsAdmin() {
		return nil, apperrors.ErrAdminOnly
	}
	v := validation.New()
	v.OneOf("status", status, models.StatusPending, models.StatusCompleted, models.StatusFailed)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var (
		dep       *models.Deposit
		completed bool
	)
	err := s.ledger.WithTx(ctx, func(tx repositories.LedgerRepository) error {
		d, err := tx.GetDepositForUpdate(ctx, depositID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDepositNotFound
		}
		if err != nil {
			return err
		}
		if d.IsCompleted() {
			return ErrDepositCompleted
		}

		if status == models.StatusCompleted {
			txn := &models.Transaction{
				UserID:          d.UserID,
				Amount:          d.Amount,
				Type:            models.TransactionTypeDeposit,
				Status:          models.StatusCompleted,
				Network:         d.Network,
				ReferenceNumber: d.ReferenceNumber,
				Date:            datatypes.Date(s.now()),
			}
			if err := tx.CreateTransaction(ctx, txn); err != nil {
				return fmt.Errorf("mirror deposit transaction: %w", err)
			}
			d.TransactionID = &txn.ID
			completed = true
		}
		d.Status = status
		if err := tx.UpdateDeposit(ctx, d); err != nil {
			return err
		}
		dep = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit status updated",
		zap.Uint("deposit_id", dep.ID),
		zap.Uint("admin_id", admin.UserID),
		zap.String("status", status),
	)

	if completed && s.referral != nil {
		depositor, err := s.users.GetByID(ctx, dep.UserID)
		if err != nil {
			s.logger.Error("load depositor for referral fees", zap.Uint("user_id", dep.UserID), zap.Error(err))
			return dep, nil
		}
		s.referral.GenerateForDepositor(ctx, depositor)
	}
	return dep, nil
}

// List pages deposits. A zero UserID lists every member; status "all" or
// empty matches every status.
func (s *Service) List(ctx context.Context, f repositories.DepositFilter, p repositories.Page) ([]models.Deposit, int64, error) {
	if f.Status == "all" {
		f.Status = ""
	}
	return s.ledger.ListDeposits(ctx, f, p)
}

// TotalCompleted sums the member's completed deposits.
func (s *Service) TotalCompleted(ctx context.Context, userID uint) (decimal.Decimal, error) {
	return s.ledger.SumDeposits(ctx, repositories.DepositFilter{UserID: userID, Status: models.StatusCompleted})
}
