// Package interest manages the company interest rates that drive daily ROI
// accrual and referral fees.
package interest

import (
	"context"
	"errors"
	"fmt"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/validation"

	"github.com/shopspring/decimal"
)

var ErrInterestNotFound = apperrors.NotFound("INTEREST_NOT_FOUND", "Company interest not found.")

var hundred = decimal.NewFromInt(100)

// Input is the writable part of a CompanyInterest.
type Input struct {
	Type       string
	Percentage decimal.Decimal
	Status     string
}

type Service struct {
	repo repositories.InterestRepository
}

func NewService(repo repositories.InterestRepository) *Service {
	if repo == nil {
		panic("interest repository is required")
	}
	return &Service{repo: repo}
}

func validate(in Input) error {
	v := validation.New()
	v.OneOf("type", in.Type, models.InterestDailyInvestment, models.InterestReferralFee)
	v.DecimalRange("percentage", in.Percentage, decimal.Zero, hundred)
	v.OneOf("status", in.Status, models.InterestActive, models.InterestInactive)
	return v.Err()
}

func (s *Service) List(ctx context.Context) ([]models.CompanyInterest, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.CompanyInterest, error) {
	ci, err := s.repo.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInterestNotFound
	}
	return ci, err
}

func (s *Service) Create(ctx context.Context, in Input) (*models.CompanyInterest, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	ci := &models.CompanyInterest{Type: in.Type, Percentage: in.Percentage, Status: in.Status}
	if err := s.repo.Create(ctx, ci); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Field("type", "The type has already been taken.")
		}
		return nil, fmt.Errorf("create interest: %w", err)
	}
	return ci, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.CompanyInterest, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	ci, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ci.Type, ci.Percentage, ci.Status = in.Type, in.Percentage, in.Status

	if err := s.repo.Update(ctx, ci); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Field("type", "The type has already been taken.")
		}
		return nil, fmt.Errorf("update interest %d: %w", id, err)
	}
	return ci, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInterestNotFound
	}
	return err
}

// ActiveRate returns the percentage of the first active row of interestType.
// found is false when no such row exists; that is not an error.
func (s *Service) ActiveRate(ctx context.Context, interestType string) (rate decimal.Decimal, found bool, err error) {
	ci, err := s.repo.FirstActive(ctx, interestType)
	if errors.Is(err, repositories.ErrNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("active %s rate: %w", interestType, err)
	}
	return ci.Percentage, true, nil
}
