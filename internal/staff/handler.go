package staff

import (
	"strconv"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StaffResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	IsActive   bool   `json:"is_active"`
}

type ReassignRequest struct {
	Role string `json:"role"`
}

func toResponse(u *models.User) StaffResponse {
	res := StaffResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(auth.ResolveRole(u)),
		Phone:    u.Phone,
		IsActive: u.IsActive,
	}
	if u.StaffProfile != nil {
		res.Department = u.StaffProfile.Department
	}
	return res
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid user id")
	}
	return uint(id), nil
}

// GET /api/admin/staff
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := List(c.UserContext(), db)
		if err != nil {
			return err
		}
		res := make([]StaffResponse, 0, len(users))
		for i := range users {
			res = append(res, toResponse(&users[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/staff
func CreateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		user, err := Create(c.UserContext(), db, auth.CurrentPrincipal(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(user))
	}
}

// PATCH /api/admin/staff/:id
func ReassignHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var body ReassignRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		user, err := ReassignRole(c.UserContext(), db, auth.CurrentPrincipal(c), id, body.Role)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(user))
	}
}

// PATCH /api/admin/staff/:id/disable
func DisableHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		user, err := Disable(c.UserContext(), db, auth.CurrentPrincipal(c), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(user))
	}
}
