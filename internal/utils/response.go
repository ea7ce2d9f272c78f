package utils

import "github.com/gofiber/fiber/v2"

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends {"message", "data"} with status 200.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return Respond(c, fiber.StatusOK, fiber.Map{"message": message, "data": data})
}

// Created sends {"message", "data"} with status 201.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return Respond(c, fiber.StatusCreated, fiber.Map{"message": message, "data": data})
}

// Error sends {"message"} with status.
func Error(c *fiber.Ctx, status int, message string) error {
	return Respond(c, status, fiber.Map{"message": message})
}

// ValidationFailed sends the field errors with status 422.
func ValidationFailed(c *fiber.Ctx, fields map[string][]string) error {
	return Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{
		"message": "Validation failed.",
		"errors":  fields,
	})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
