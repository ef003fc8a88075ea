package auth

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TokenRequest struct {
	Username string `json:"username"` // username or email
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type MeResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// POST /api/auth/register/customer
func RegisterCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterInput
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		user, err := RegisterCustomer(c.UserContext(), db, body)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(MeResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(ResolveRole(user)),
		})
	}
}

// POST /api/auth/token
func TokenHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TokenRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		user, err := Authenticate(c.UserContext(), db, body.Username, body.Password)
		if err != nil {
			if apperr.Is(err, apperr.KindAuthentication) {
				metrics.AuthFailures.WithLabelValues("bad_credentials").Inc()
			}
			return err
		}

		pair, err := IssueTokens(cfg, user)
		if err != nil {
			return apperr.Internal(err, "could not issue token")
		}
		return c.JSON(pair)
	}
}

// POST /api/auth/token/refresh
func RefreshHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil || body.Refresh == "" {
			return apperr.Validation("refresh token is required")
		}

		claims, err := ParseToken(cfg.JWTSecret, body.Refresh, TokenRefresh)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("invalid_refresh").Inc()
			return apperr.Authentication("invalid or expired refresh token")
		}

		user, err := LoadUser(c.UserContext(), db, claims.UserID)
		if err != nil || !user.IsActive {
			metrics.AuthFailures.WithLabelValues("inactive").Inc()
			return apperr.Authentication("account is disabled or missing")
		}

		access, err := GenerateToken(cfg.JWTSecret, user, TokenAccess, cfg.AccessTokenTTL)
		if err != nil {
			return apperr.Internal(err, "could not issue token")
		}
		return c.JSON(fiber.Map{"access": access})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := CurrentPrincipal(c)
		if p == nil {
			return apperr.Authentication("not authenticated")
		}
		return c.JSON(MeResponse{
			ID:       p.UserID,
			Username: p.Username,
			Email:    p.Email,
			Role:     string(p.Role),
		})
	}
}
