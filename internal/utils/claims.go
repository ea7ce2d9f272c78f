package utils

import (
	"errors"

	"investa/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserClaims extracts the user claims from the Fiber context.
// It returns an error if the claims are missing or of an invalid type.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	v := c.Locals("claims")
	if v == nil {
		return nil, errors.New("claims not found in context")
	}

	claims, ok := v.(*models.UserClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

// GetActor returns the caller identity carried by the request.
func GetActor(c *fiber.Ctx) (models.Actor, error) {
	claims, err := GetUserClaims(c)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}
