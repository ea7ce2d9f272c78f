package handlers

import (
	"errors"

	apperrors "investa/internal/errors"
	"investa/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	errUnauthenticated = apperrors.Unauthorized("UNAUTHENTICATED", "Unauthenticated.")
	errInvalidBody     = apperrors.Business("INVALID_BODY", "Invalid request body")
	errInvalidID       = apperrors.NotFound("INVALID_ID", "Resource not found.")
)

// ErrorHandler renders service errors. Validation errors become 422 with the
// field map, domain errors use their own status, and anything else is logged
// and hidden behind a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		if ve, ok := apperrors.AsValidation(err); ok {
			return utils.ValidationFailed(c, ve.Fields)
		}
		if de, ok := apperrors.AsDomain(err); ok {
			return utils.Respond(c, de.Status(), fiber.Map{
				"message": err.Error(),
				"code":    de.Code,
			})
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.Error(c, fe.Code, fe.Message)
		}

		userID, _ := c.Locals("userID").(uint)
		logger.Error("request failed",
			zap.Uint("user_id", userID),
			zap.String("operation", c.Method()+" "+c.Route().Path),
			zap.Error(err),
		)
		return utils.InternalError(c, "An unexpected error occurred.")
	}
}
