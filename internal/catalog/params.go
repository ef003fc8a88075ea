package catalog

import (
	"strconv"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s id", what)
	}
	return uint(id), nil
}
