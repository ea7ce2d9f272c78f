package auth

import apperrors "investa/internal/errors"

var (
	ErrInvalidCredentials = apperrors.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	ErrInvalidToken       = apperrors.Unauthorized("INVALID_TOKEN", "Invalid or expired token")
	ErrTokenRevoked       = apperrors.Unauthorized("TOKEN_REVOKED", "Token has been revoked")
)
