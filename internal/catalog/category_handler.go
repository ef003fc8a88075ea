package catalog

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// GET /api/categories
func ListCategoriesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := db.WithContext(c.UserContext()).Order("name asc").Find(&categories).Error; err != nil {
			return apperr.Internal(err, "could not list categories")
		}

		res := make([]CategoryResponse, 0, len(categories))
		for _, cat := range categories {
			res = append(res, CategoryResponse{ID: cat.ID, Name: cat.Name})
		}
		return c.JSON(res)
	}
}
