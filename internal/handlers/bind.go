package handlers

import (
	"strconv"

	"investa/internal/models"
	"investa/internal/utils"
	"investa/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

// bind parses the JSON body into dst and runs its validate tags.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return validation.Struct(dst)
}

// bindQuery parses query parameters into dst and runs its validate tags.
func bindQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return errInvalidBody
	}
	return validation.Struct(dst)
}

func actor(c *fiber.Ctx) (models.Actor, error) {
	a, err := utils.GetActor(c)
	if err != nil {
		return models.Actor{}, errUnauthenticated
	}
	return a, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}
