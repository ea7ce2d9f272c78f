// Package companywallet manages the company's deposit addresses per network.
package companywallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/validation"
)

var (
	ErrWalletNotFound  = apperrors.NotFound("COMPANY_WALLET_NOT_FOUND", "Company wallet not found.")
	ErrNetworkNotFound = apperrors.NotFound("NETWORK_NOT_FOUND", "No company wallet found for the selected network.")
)

// Input is the writable part of a CompanyWallet.
type Input struct {
	Network string
	Address string
}

type Service struct {
	repo repositories.CompanyWalletRepository
}

func NewService(repo repositories.CompanyWalletRepository) *Service {
	if repo == nil {
		panic("company wallet repository is required")
	}
	return &Service{repo: repo}
}

func validate(in *Input) error {
	in.Network = strings.TrimSpace(in.Network)
	in.Address = strings.TrimSpace(in.Address)
	v := validation.New()
	v.Required("network", in.Network)
	v.MaxLength("network", in.Network, validation.MaxReferenceLength)
	v.Required("address", in.Address)
	v.MaxLength("address", in.Address, validation.MaxReferenceLength)
	return v.Err()
}

// List pages wallets matching search on network or address.
func (s *Service) List(ctx context.Context, search string, p repositories.Page) ([]models.CompanyWallet, int64, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), p)
}

func (s *Service) Create(ctx context.Context, in Input) (*models.CompanyWallet, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	w := &models.CompanyWallet{Network: in.Network, Address: in.Address}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create company wallet: %w", err)
	}
	return w, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.CompanyWallet, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	w, err := s.repo.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	w.Network = in.Network
	w.Address = in.Address
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update company wallet %d: %w", id, err)
	}
	return w, nil
}

// Networks lists the distinct networks members can deposit on.
func (s *Service) Networks(ctx context.Context) ([]string, error) {
	networks, err := s.repo.Networks(ctx)
	if err != nil {
		return nil, err
	}
	if networks == nil {
		networks = []string{}
	}
	return networks, nil
}

// ForNetwork returns the deposit address for network.
func (s *Service) ForNetwork(ctx context.Context, network string) (*models.CompanyWallet, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return nil, apperrors.Field("network", "The network field is required.")
	}
	w, err := s.repo.FindByNetwork(ctx, network)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNetworkNotFound
	}
	return w, err
}
