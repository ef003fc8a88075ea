package catalog

import (
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InventoryItemResponse struct {
	ID           uint   `json:"id"`
	MenuItemID   uint   `json:"menu_item_id"`
	MenuItemName string `json:"menu_item_name"`
	Quantity     int    `json:"quantity"`
	LastUpdated  string `json:"last_updated"`
}

type CreateInventoryItemRequest struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

type UpdateInventoryItemRequest struct {
	Quantity *int `json:"quantity"`
}

func inventoryResponse(it *models.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:           it.ID,
		MenuItemID:   it.MenuItemID,
		MenuItemName: it.MenuItem.Name,
		Quantity:     it.Quantity,
		LastUpdated:  it.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func loadInventoryItem(db *gorm.DB, id uint) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := db.Preload("MenuItem").First(&it, id).Error; err != nil {
		return nil, apperr.FromDB(err, "inventory item not found")
	}
	return &it, nil
}

// GET /api/inventory
func ListInventoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.InventoryItem
		if err := db.WithContext(c.UserContext()).Preload("MenuItem").Order("id asc").Find(&items).Error; err != nil {
			return apperr.Internal(err, "could not list inventory")
		}

		res := make([]InventoryItemResponse, 0, len(items))
		for i := range items {
			res = append(res, inventoryResponse(&items[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/inventory/:id
func GetInventoryItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "inventory item")
		if err != nil {
			return err
		}
		it, err := loadInventoryItem(db.WithContext(c.UserContext()), id)
		if err != nil {
			return err
		}
		return c.JSON(inventoryResponse(it))
	}
}

// POST /api/inventory
func CreateInventoryItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInventoryItemRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		dbc := db.WithContext(c.UserContext())

		if body.Quantity < 0 {
			return apperr.Validation("quantity cannot be negative")
		}

		var menuCount int64
		if err := dbc.Model(&models.MenuItem{}).Where("id = ?", body.MenuItemID).Count(&menuCount).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if menuCount == 0 {
			return apperr.Validation("menu item not found")
		}

		var existing int64
		if err := dbc.Model(&models.InventoryItem{}).Where("menu_item_id = ?", body.MenuItemID).Count(&existing).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if existing > 0 {
			return apperr.Validation("menu item already has an inventory record")
		}

		it := models.InventoryItem{MenuItemID: body.MenuItemID, Quantity: body.Quantity}
		if err := dbc.Omit("MenuItem").Create(&it).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		created, err := loadInventoryItem(dbc, it.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(inventoryResponse(created))
	}
}

// PUT /api/inventory/:id
func UpdateInventoryItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "inventory item")
		if err != nil {
			return err
		}
		dbc := db.WithContext(c.UserContext())

		it, err := loadInventoryItem(dbc, id)
		if err != nil {
			return err
		}

		var body UpdateInventoryItemRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		if body.Quantity == nil {
			return apperr.Validation("quantity is required")
		}
		if *body.Quantity < 0 {
			return apperr.Validation("quantity cannot be negative")
		}

		if err := dbc.Model(it).Update("quantity", *body.Quantity).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		updated, err := loadInventoryItem(dbc, id)
		if err != nil {
			return err
		}
		return c.JSON(inventoryResponse(updated))
	}
}

// DELETE /api/inventory/:id
func DeleteInventoryItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "inventory item")
		if err != nil {
			return err
		}
		res := db.WithContext(c.UserContext()).Delete(&models.InventoryItem{}, id)
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("inventory item not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
