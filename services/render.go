package services

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

// renderError maps a domain error to its HTTP response. Anything outside
// the domain taxonomy is a 500.
func renderError(c *fiber.Ctx, err error) error {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		return c.Status(domainErr.Status).JSON(domainErr)
	}
	log.Printf("❌ unexpected error on %s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// parsePage reads page/size query params: page 1 and size 20 by default,
// size capped at 100.
func parsePage(c *fiber.Ctx) (page, size int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.Query("size", "20"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
