// Package user serves a member's own profile.
package user

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

// ProfileInput holds the editable profile fields.
type ProfileInput struct {
	FirstName      string
	LastName       string
	PhoneNumber    string
	Network        string
	NetworkAddress string
}

type Service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) *Service {
	if repo == nil {
		panic("user repository is required")
	}
	return &Service{repo: repo}
}

func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	return u, err
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Network = strings.TrimSpace(in.Network)
	in.NetworkAddress = strings.TrimSpace(in.NetworkAddress)

	v := validation.New()
	v.Required("first_name", in.FirstName)
	v.MaxLength("first_name", in.FirstName, validation.MaxNameLength)
	v.Required("last_name", in.LastName)
	v.MaxLength("last_name", in.LastName, validation.MaxNameLength)
	v.Required("phone_number", in.PhoneNumber)
	v.MaxLength("phone_number", in.PhoneNumber, 20)
	v.Required("network", in.Network)
	v.MaxLength("network", in.Network, validation.MaxReferenceLength)
	v.Required("network_address", in.NetworkAddress)
	v.MaxLength("network_address", in.NetworkAddress, validation.MaxReferenceLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.PhoneNumber = in.PhoneNumber
	u.Network = in.Network
	u.NetworkAddress = in.NetworkAddress
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
