package repositories

import (
	"context"

	"investa/internal/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create creates a new user. Email or promocode clashes return ErrDuplicate.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByPromocode retrieves the owner of a referral code
	GetByPromocode(ctx context.Context, code string) (*models.User, error)

	// Update saves profile fields of an existing user
	Update(ctx context.Context, user *models.User) error

	// IncrementTokenVersion invalidates every token issued so far
	IncrementTokenVersion(ctx context.Context, userID uint) error

	// UpdatePassword updates the user's password hash
	UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error

	// MarkMembershipPaid flags the membership fee as paid
	MarkMembershipPaid(ctx context.Context, userID uint) error

	// ListIDsByRole returns the ids of every user with role
	ListIDsByRole(ctx context.Context, role string) ([]uint, error)

	// ListReferred returns the users whose referred_by is referrerID
	ListReferred(ctx context.Context, referrerID uint) ([]models.User, error)

	// CountByRole counts users with role
	CountByRole(ctx context.Context, role string) (int64, error)
}
