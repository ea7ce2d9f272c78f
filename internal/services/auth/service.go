// Package auth registers members and issues the bearer tokens the API accepts.
package auth

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

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const promocodeAttempts = 5

// TokenConfig configures access token signing.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	FirstName            string
	LastName             string
	Email                string
	PhoneNumber          string
	Password             string
	PasswordConfirmation string
	Promocode            string
}

type Service struct {
	users      repositories.UserRepository
	tokens     TokenConfig
	bcryptCost int
	logger     *zap.Logger
}

func NewService(users repositories.UserRepository, tokens TokenConfig, logger *zap.Logger) *Service {
	if users == nil {
		panic("user repository is required")
	}
	if tokens.TTL <= 0 {
		tokens.TTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.Named("auth"),
	}
}

// Register creates a member account. The role is always user_client; admins
// come from the seeding command.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Promocode = strings.TrimSpace(in.Promocode)

	v := validation.New()
	v.Required("first_name", in.FirstName)
	v.MaxLength("first_name", in.FirstName, validation.MaxNameLength)
	v.Required("last_name", in.LastName)
	v.MaxLength("last_name", in.LastName, validation.MaxNameLength)
	v.Required("email", in.Email)
	v.Email("email", in.Email)
	v.Required("phone_number", in.PhoneNumber)
	v.MaxLength("phone_number", in.PhoneNumber, 20)
	v.Password("password", in.Password, in.PasswordConfirmation)

	if in.Email != "" {
		if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
			v.AddError("email", "The email address is already taken.")
		} else if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", fmt.Errorf("check email: %w", err)
		}
	}

	var referredBy *uint
	if in.Promocode != "" {
		referrer, err := s.users.GetByPromocode(ctx, in.Promocode)
		switch {
		case err == nil:
			referredBy = &referrer.ID
		case errors.Is(err, repositories.ErrUserNotFound):
			v.AddError("promocode", "The provided promocode is invalid.")
		default:
			return nil, "", fmt.Errorf("look up promocode: %w", err)
		}
	}
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Password:     string(hash),
		Role:         models.RoleClient,
		ReferredBy:   referredBy,
		TokenVersion: 1,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("member registered", zap.Uint("user_id", user.ID), zap.Bool("referred", referredBy != nil))
	return user, token, nil
}

// create inserts user, drawing a fresh promocode when the random one clashes.
func (s *Service) create(ctx context.Context, user *models.User) error {
	for attempt := 0; attempt < promocodeAttempts; attempt++ {
		code, err := utils.GeneratePromocode()
		if err != nil {
			return fmt.Errorf("generate promocode: %w", err)
		}
		user.Promocode = code

		err = s.users.Create(ctx, user)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("create user: %w", err)
		}
		// the email may have been taken since the check above
		if _, lookupErr := s.users.GetByEmail(ctx, user.Email); lookupErr == nil {
			return apperrors.Field("email", "The email address is already taken.")
		}
	}
	return fmt.Errorf("create user: no free promocode after %d attempts", promocodeAttempts)
}

// Login verifies credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	v := validation.New()
	v.Required("email", email)
	v.Required("password", password)
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		s.logger.Info("login failed: unknown email")
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Info("login failed: wrong password", zap.Uint("user_id", user.ID))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes every token issued to the user so far.
func (s *Service) Logout(ctx context.Context, userID uint) error {
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the current one, and
// revokes outstanding tokens.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next, confirmation string) error {
	v := validation.New()
	v.Required("current_password", current)
	v.Password("new_password", next, confirmation)
	if err := v.Err(); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperrors.Field("current_password", "The current password is incorrect.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.Logout(ctx, userID)
}

// Authenticate validates a bearer token and checks it has not been revoked.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.UserClaims, error) {
	_, claims, err := utils.ParseToken(token, s.tokens.Secret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load token owner: %w", err)
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	// the role on record wins over the one in the token
	claims.Role = user.Role
	claims.Permissions = models.GetDefaultPermissions(user.Role)
	return claims, nil
}

func (s *Service) issue(user *models.User) (string, error) {
	token, err := utils.GenerateToken(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	}, s.tokens.Secret, s.tokens.TTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
