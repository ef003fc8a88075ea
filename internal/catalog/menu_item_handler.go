package catalog

import (
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Media says where uploaded images go on disk and how they are served.
type Media struct {
	Path      string
	URLPrefix string
}

func (m Media) url(rel string) *string {
	if rel == "" {
		return nil
	}
	u := strings.TrimRight(m.URLPrefix, "/") + "/" + rel
	return &u
}

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// largest value that fits decimal(8,2)
var maxPrice = decimal.RequireFromString("999999.99")

type MenuItemResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       string            `json:"price"`
	Available   bool              `json:"available"`
	Category    *CategoryResponse `json:"category"`
	Image       *string           `json:"image"`
}

type CreateMenuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Available   *bool           `json:"available"` // defaults to true
	CategoryID  *uint           `json:"category_id"`
}

type UpdateMenuItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Available   *bool            `json:"available"`
	CategoryID  *uint            `json:"category_id"`
	// Uncategorize clears the category when category_id is absent.
	Uncategorize bool `json:"uncategorize"`
}

func menuItemResponse(m *models.MenuItem, media Media) MenuItemResponse {
	res := MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price.StringFixed(2),
		Available:   m.Available,
		Image:       media.url(m.Image),
	}
	if m.Category != nil {
		res.Category = &CategoryResponse{ID: m.Category.ID, Name: m.Category.Name}
	}
	return res
}

func checkPrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperr.Validation("price must be positive")
	}
	if !p.Equal(p.Round(2)) {
		return apperr.Validation("price may have at most two decimal places")
	}
	if p.GreaterThan(maxPrice) {
		return apperr.Validation("price is too large")
	}
	return nil
}

func checkCategory(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if count == 0 {
		return apperr.Validation("category not found")
	}
	return nil
}

func loadMenuItem(db *gorm.DB, id uint) (*models.MenuItem, error) {
	var m models.MenuItem
	if err := db.Preload("Category").First(&m, id).Error; err != nil {
		return nil, apperr.FromDB(err, "menu item not found")
	}
	return &m, nil
}

// GET /api/menu-items?available=true&category_id=2
func ListMenuItemsHandler(db *gorm.DB, media Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.WithContext(c.UserContext()).Preload("Category")

		if v := c.Query("available"); v != "" {
			available, err := strconv.ParseBool(v)
			if err != nil {
				return apperr.Validation("available must be true or false")
			}
			dbq = dbq.Where("available = ?", available)
		}
		if v := c.Query("category_id"); v != "" {
			catID, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return apperr.Validation("invalid category_id")
			}
			dbq = dbq.Where("category_id = ?", catID)
		}

		var items []models.MenuItem
		if err := dbq.Order("name asc").Find(&items).Error; err != nil {
			return apperr.Internal(err, "could not list menu items")
		}

		res := make([]MenuItemResponse, 0, len(items))
		for i := range items {
			res = append(res, menuItemResponse(&items[i], media))
		}
		return c.JSON(res)
	}
}

// GET /api/menu-items/:id
func GetMenuItemHandler(db *gorm.DB, media Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "menu item")
		if err != nil {
			return err
		}
		m, err := loadMenuItem(db.WithContext(c.UserContext()), id)
		if err != nil {
			return err
		}
		return c.JSON(menuItemResponse(m, media))
	}
}

// POST /api/menu-items
func CreateMenuItemHandler(db *gorm.DB, media Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		dbc := db.WithContext(c.UserContext())

		name := strings.TrimSpace(body.Name)
		if name == "" {
			return apperr.Validation("name is required")
		}
		if err := checkPrice(body.Price); err != nil {
			return err
		}
		if body.CategoryID != nil {
			if err := checkCategory(dbc, *body.CategoryID); err != nil {
				return err
			}
		}
		available := true
		if body.Available != nil {
			available = *body.Available
		}

		m := models.MenuItem{
			Name:        name,
			Description: body.Description,
			Price:       body.Price,
			Available:   available,
			CategoryID:  body.CategoryID,
		}
		if err := dbc.Create(&m).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		created, err := loadMenuItem(dbc, m.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(menuItemResponse(created, media))
	}
}

// PUT /api/menu-items/:id
func UpdateMenuItemHandler(db *gorm.DB, media Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "menu item")
		if err != nil {
			return err
		}
		dbc := db.WithContext(c.UserContext())

		var m models.MenuItem
		if err := dbc.First(&m, id).Error; err != nil {
			return apperr.FromDB(err, "menu item not found")
		}

		var body UpdateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return apperr.Validation("name is required")
			}
			m.Name = name
		}
		if body.Description != nil {
			m.Description = *body.Description
		}
		if body.Price != nil {
			if err := checkPrice(*body.Price); err != nil {
				return err
			}
			m.Price = *body.Price
		}
		if body.Available != nil {
			m.Available = *body.Available
		}
		if body.CategoryID != nil {
			if err := checkCategory(dbc, *body.CategoryID); err != nil {
				return err
			}
			m.CategoryID = body.CategoryID
		} else if body.Uncategorize {
			m.CategoryID = nil
		}

		if err := dbc.Omit("Category").Save(&m).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		updated, err := loadMenuItem(dbc, m.ID)
		if err != nil {
			return err
		}
		return c.JSON(menuItemResponse(updated, media))
	}
}

// DELETE /api/menu-items/:id
// Items that appear on any order cannot be removed; mark them unavailable instead.
func DeleteMenuItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "menu item")
		if err != nil {
			return err
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var m models.MenuItem
			if err := tx.First(&m, id).Error; err != nil {
				return apperr.FromDB(err, "menu item not found")
			}

			var used int64
			if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&used).Error; err != nil {
				return apperr.FromDB(err, "")
			}
			if used > 0 {
				return apperr.Conflict("menu item is referenced by existing orders")
			}

			if err := tx.Where("menu_item_id = ?", id).Delete(&models.InventoryItem{}).Error; err != nil {
				return apperr.FromDB(err, "")
			}
			if err := tx.Delete(&m).Error; err != nil {
				return apperr.FromDB(err, "")
			}
			return nil
		})
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/menu-items/:id/image  (multipart field "image")
func UploadMenuItemImageHandler(db *gorm.DB, media Media) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "menu item")
		if err != nil {
			return err
		}
		dbc := db.WithContext(c.UserContext())

		var m models.MenuItem
		if err := dbc.First(&m, id).Error; err != nil {
			return apperr.FromDB(err, "menu item not found")
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return apperr.Validation("image file is required")
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExt[ext] {
			return apperr.Validation("image must be jpg, jpeg, png or webp")
		}

		dir := filepath.Join(media.Path, "menu_items")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Internal(err, "could not store image")
		}
		name := strconv.FormatUint(uint64(m.ID), 10) + "_" + uuid.NewString() + ext
		if err := c.SaveFile(fileHeader, filepath.Join(dir, name)); err != nil {
			return apperr.Internal(err, "could not store image")
		}

		old := m.Image
		m.Image = path.Join("menu_items", name)
		if err := dbc.Model(&m).Update("image", m.Image).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if old != "" {
			_ = os.Remove(filepath.Join(media.Path, filepath.FromSlash(old)))
		}

		updated, err := loadMenuItem(dbc, m.ID)
		if err != nil {
			return err
		}
		return c.JSON(menuItemResponse(updated, media))
	}
}
