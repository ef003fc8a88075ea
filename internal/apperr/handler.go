package apperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// FiberErrorHandler renders every error as {"error": "..."}. Internal
// failures are logged and hidden from the client.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return c.Status(HTTPStatus(ae.Kind)).JSON(fiber.Map{
			"error": ae.Message,
		})
	}

	log.Println("Unexpected error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "unexpected server error",
	})
}
