package discount

import (
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DiscountCodeResponse struct {
	ID         uint   `json:"id"`
	Code       string `json:"code"`
	PercentOff int    `json:"percent_off"`
	ExpiresAt  string `json:"expires_at"`
	Active     bool   `json:"active"`
	UsedCount  int    `json:"used_count"`
	MaxUse     int    `json:"max_use"`
}

func toResponse(d *models.DiscountCode) DiscountCodeResponse {
	return DiscountCodeResponse{
		ID:         d.ID,
		Code:       d.Code,
		PercentOff: d.PercentOff,
		ExpiresAt:  d.ExpiresAt.UTC().Format(time.RFC3339),
		Active:     d.Active,
		UsedCount:  d.UsedCount,
		MaxUse:     d.MaxUse,
	}
}

// GET /api/discount-codes
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		codes, err := List(c.UserContext(), db)
		if err != nil {
			return err
		}
		res := make([]DiscountCodeResponse, 0, len(codes))
		for i := range codes {
			res = append(res, toResponse(&codes[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/discount-codes
func CreateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		d, err := Create(c.UserContext(), db, body, time.Now())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(d))
	}
}

// PUT /api/discount-codes/:id
func UpdateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("invalid discount code id")
		}
		var body UpdateInput
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		d, err := Update(c.UserContext(), db, uint(id), body)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(d))
	}
}

// GET /api/discount-codes/validate/:code
func ValidateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, valid, err := Lookup(c.UserContext(), db, c.Params("code"), time.Now())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"code":        d.Code,
			"percent_off": d.PercentOff,
			"valid":       valid,
		})
	}
}
