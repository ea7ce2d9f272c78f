// Package dashboard aggregates the totals shown on the admin and member
// dashboards.
package dashboard

import (
	"context"
	"fmt"

	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/services/wallet"

	"github.com/shopspring/decimal"
)

// BalanceSource derives a member's balance.
type BalanceSource interface {
	BalanceBreakdown(ctx context.Context, userID uint) (*wallet.BalanceBreakdown, error)
}

// AdminSummary holds platform-wide totals.
type AdminSummary struct {
	TotalCompletedDeposits  decimal.Decimal
	TotalPendingWithdrawals decimal.Decimal
	TotalWithdrawn          decimal.Decimal
	TotalTransactions       decimal.Decimal
	TotalMembers            int64
}

// MemberSummary holds one member's totals.
type MemberSummary struct {
	Balance                wallet.BalanceBreakdown
	TotalCompletedDeposits decimal.Decimal
	PendingWithdrawal      decimal.Decimal
}

type Service struct {
	ledger   repositories.LedgerRepository
	users    repositories.UserRepository
	balances BalanceSource
}

func NewService(ledger repositories.LedgerRepository, users repositories.UserRepository, balances BalanceSource) *Service {
	if ledger == nil || users == nil || balances == nil {
		panic("dashboard service requires ledger, users and balances")
	}
	return &Service{ledger: ledger, users: users, balances: balances}
}

func (s *Service) AdminSummary(ctx context.Context) (*AdminSummary, error) {
	deposits, err := s.ledger.SumTransactions(ctx, repositories.TransactionFilter{
		Type:   models.TransactionTypeDeposit,
		Status: models.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("sum deposits: %w", err)
	}
	pending, err := s.ledger.SumWithdrawals(ctx, repositories.WithdrawalFilter{Status: models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("sum pending withdrawals: %w", err)
	}
	withdrawn, err := s.ledger.SumTransactions(ctx, repositories.TransactionFilter{
		Type:   models.TransactionTypeWithdrawal,
		Status: models.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("sum withdrawn: %w", err)
	}
	all, err := s.ledger.SumTransactions(ctx, repositories.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	members, err := s.users.CountByRole(ctx, models.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	return &AdminSummary{
		TotalCompletedDeposits:  deposits,
		TotalPendingWithdrawals: pending,
		TotalWithdrawn:          withdrawn,
		TotalTransactions:       all,
		TotalMembers:            members,
	}, nil
}

func (s *Service) MemberSummary(ctx context.Context, userID uint) (*MemberSummary, error) {
	balance, err := s.balances.BalanceBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	deposits, err := s.ledger.SumDeposits(ctx, repositories.DepositFilter{UserID: userID, Status: models.StatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("sum deposits: %w", err)
	}
	pending, err := s.ledger.SumWithdrawals(ctx, repositories.WithdrawalFilter{UserID: userID, Status: models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("sum pending withdrawal: %w", err)
	}
	return &MemberSummary{
		Balance:                *balance,
		TotalCompletedDeposits: deposits,
		PendingWithdrawal:      pending,
	}, nil
}
