package auth

import (
	"strings"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JWTMiddleware authenticates the bearer token and attaches a Principal built
// from the current state of the user row, so role changes and disabling take
// effect without waiting for token expiry.
func JWTMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			metrics.AuthFailures.WithLabelValues("missing_header").Inc()
			return apperr.Authentication("authorization header is missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			metrics.AuthFailures.WithLabelValues("bad_header").Inc()
			return apperr.Authentication("authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1], TokenAccess)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			return apperr.Authentication("invalid or expired token")
		}

		user, err := LoadUser(c.UserContext(), db, claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				metrics.AuthFailures.WithLabelValues("unknown_user").Inc()
				return apperr.Authentication("user no longer exists")
			}
			return err
		}
		if !user.IsActive {
			metrics.AuthFailures.WithLabelValues("inactive").Inc()
			return apperr.Authentication("account is disabled")
		}

		c.Locals(CtxPrincipalKey, NewPrincipal(user))
		return c.Next()
	}
}
