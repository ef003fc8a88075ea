package database

import (
	"fmt"
	"log"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init opens the Postgres connection and stores it in DB.
func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	log.Println("Database connection established.")
	return nil
}

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.StaffProfile{},
		&models.Table{},
		&models.CustomerProfile{},
		&models.Category{},
		&models.MenuItem{},
		&models.InventoryItem{},
		&models.DiscountCode{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
		&models.Payment{},
		&models.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Println("Migration completed.")
	return nil
}
