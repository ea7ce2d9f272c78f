// Package membership records the one-time membership fee members pay before
// they may deposit.
package membership

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
)

var (
	ErrClientOnly  = apperrors.Forbidden("CLIENT_ONLY", "Unauthorized. User client access required.")
	ErrAlreadyPaid = apperrors.Business("MEMBERSHIP_ALREADY_PAID", "Membership fee already paid.")
)

// PayInput describes the membership payment sent by the member.
type PayInput struct {
	Amount        decimal.Decimal
	Network       string
	WalletAddress string
}

// Status is the member's membership state.
type Status struct {
	Paid          bool
	FeeAmount     decimal.Decimal
	Network       string
	WalletAddress string
	Latest        *models.MembershipFee
}

type Service struct {
	users  repositories.UserRepository
	fees   repositories.MembershipRepository
	fee    decimal.Decimal
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the service; fee is the amount a member must pay.
func NewService(users repositories.UserRepository, fees repositories.MembershipRepository, fee decimal.Decimal, logger *zap.Logger) *Service {
	if users == nil || fees == nil {
		panic("membership service requires users and fees")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		fees:   fees,
		fee:    fee,
		logger: logger.Named("membership"),
		now:    time.Now,
	}
}

// Pay records the payment and marks the member as paid.
func (s *Service) Pay(ctx context.Context, actor models.Actor, in PayInput) (*models.MembershipFee, error) {
	if actor.Role != models.RoleClient {
		return nil, ErrClientOnly
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.MembershipFeePaid {
		return nil, ErrAlreadyPaid
	}

	in.Network = strings.TrimSpace(in.Network)
	in.WalletAddress = strings.TrimSpace(in.WalletAddress)
	v := validation.New()
	v.DecimalMin("amount", in.Amount, s.fee)
	v.Required("network", in.Network)
	v.Required("company_wallet_address", in.WalletAddress)
	v.MaxLength("company_wallet_address", in.WalletAddress, validation.MaxReferenceLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	fee := &models.MembershipFee{
		UserID:          user.ID,
		Amount:          in.Amount,
		Network:         in.Network,
		WalletAddress:   in.WalletAddress,
		Status:          models.StatusPending,
		ReferenceNumber: utils.MembershipReference(s.now(), user.ID),
	}
	if err := s.fees.Create(ctx, fee); err != nil {
		return nil, fmt.Errorf("record membership fee: %w", err)
	}
	if err := s.users.MarkMembershipPaid(ctx, user.ID); err != nil {
		s.logger.Error("membership fee stored but user not flagged",
			zap.Uint("user_id", user.ID),
			zap.Uint("membership_fee_id", fee.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("mark membership paid: %w", err)
	}

	s.logger.Info("membership fee paid", zap.Uint("user_id", user.ID), zap.String("reference", fee.ReferenceNumber))
	return fee, nil
}

// Status reports whether the member has paid and the fee they owe.
func (s *Service) Status(ctx context.Context, userID uint) (*Status, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	st := &Status{
		Paid:          user.MembershipFeePaid,
		FeeAmount:     s.fee,
		Network:       user.Network,
		WalletAddress: user.NetworkAddress,
	}
	latest, err := s.fees.LatestForUser(ctx, userID)
	switch {
	case err == nil:
		st.Latest = latest
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("load membership fee: %w", err)
	}
	return st, nil
}
