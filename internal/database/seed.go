package database

import (
	"log"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultCategories = []string{"Starters", "Main Courses", "Desserts", "Drinks"}

// SeedCategories inserts the default menu categories, skipping existing names.
func SeedCategories(db *gorm.DB) error {
	cats := make([]models.Category, 0, len(defaultCategories))
	for _, name := range defaultCategories {
		cats = append(cats, models.Category{Name: name})
	}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&cats)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("Category seed: %d new categories", res.RowsAffected)
	return nil
}
