package access

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Require gates a route group with the policy of resource. It runs before
// the handler so a denied request never reaches the store.
func Require(resource Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := auth.CurrentPrincipal(c)
		if p == nil {
			return apperr.Authentication("not authenticated")
		}
		if !Check(resource, p.Role, c.Method()) {
			return apperr.Authorization("you do not have permission to perform this action")
		}
		return c.Next()
	}
}

// RequireRoles is the allow-list gate for a single route.
func RequireRoles(roles ...models.UserRole) fiber.Handler {
	allowed := Roles(roles...)
	return func(c *fiber.Ctx) error {
		p := auth.CurrentPrincipal(c)
		if p == nil {
			return apperr.Authentication("not authenticated")
		}
		if !Allow(p.Role, allowed) {
			return apperr.Authorization("you do not have permission to perform this action")
		}
		return c.Next()
	}
}
