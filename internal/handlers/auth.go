package handlers

import (
	"investa/internal/models"
	"investa/internal/services/auth"
	"investa/internal/services/user"
	"investa/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth  *auth.Service
	users *user.Service
}

func NewAuthHandler(authService *auth.Service, userService *user.Service) *AuthHandler {
	return &AuthHandler{auth: authService, users: userService}
}

type registerRequest struct {
	FirstName            string `json:"first_name" validate:"required"`
	LastName             string `json:"last_name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	PhoneNumber          string `json:"phone_number" validate:"required"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	Promocode            string `json:"promocode"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	PhoneNumber    string `json:"phone_number"`
	Network        string `json:"network"`
	NetworkAddress string `json:"network_address"`
}

type passwordRequest struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required"`
}

func authPayload(u *models.User, token string) fiber.Map {
	return fiber.Map{
		"user":         presentUser(u),
		"access_token": token,
		"token_type":   "Bearer",
		"permissions":  models.GetDefaultPermissions(u.Role),
	}
}

// Register creates a member account, optionally linked to a referrer.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, token, err := h.auth.Register(c.UserContext(), auth.RegisterInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		PhoneNumber:          req.PhoneNumber,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Promocode:            req.Promocode,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, "Registration successful", authPayload(u, token))
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return utils.Success(c, "Login successful", authPayload(u, token))
}

// Logout revokes every token issued to the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), a.UserID); err != nil {
		return err
	}
	return utils.Success(c, "Logged out successfully", nil)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	u, err := h.users.Profile(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "User retrieved", presentUser(u))
}

// UpdateProfile changes the caller's name, phone and payout wallet.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := h.users.UpdateProfile(c.UserContext(), a.UserID, user.ProfileInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		Network:        req.Network,
		NetworkAddress: req.NetworkAddress,
	})
	if err != nil {
		return err
	}
	return utils.Success(c, "Profile updated successfully", presentUser(u))
}

// UpdatePassword changes the caller's password and revokes existing tokens.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), a.UserID, req.CurrentPassword, req.NewPassword, req.NewPasswordConfirmation); err != nil {
		return err
	}
	return utils.Success(c, "Password updated successfully. Please log in again.", nil)
}
