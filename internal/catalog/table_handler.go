package catalog

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TableResponse struct {
	ID       uint   `json:"id"`
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
	WaiterID *uint  `json:"waiter_id"`
}

type CreateTableRequest struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"` // defaults to free
	WaiterID *uint  `json:"waiter_id"`
}

type UpdateTableRequest struct {
	Number   *int    `json:"number"`
	Capacity *int    `json:"capacity"`
	Status   *string `json:"status"`
	WaiterID *uint   `json:"waiter_id"`
	// Unassign clears the waiter; a null waiter_id is indistinguishable from an omitted one.
	Unassign bool `json:"unassign_waiter"`
}

func tableResponse(t *models.Table) TableResponse {
	return TableResponse{
		ID:       t.ID,
		Number:   t.Number,
		Capacity: t.Capacity,
		Status:   string(t.Status),
		WaiterID: t.WaiterID,
	}
}

// checkWaiter requires id to be an active waiter account.
func checkWaiter(db *gorm.DB, id uint) error {
	var count int64
	err := db.Model(&models.User{}).
		Where("id = ? AND role = ? AND is_active = ?", id, models.RoleWaiter, true).
		Count(&count).Error
	if err != nil {
		return apperr.FromDB(err, "")
	}
	if count == 0 {
		return apperr.Validation("waiter_id must reference an active waiter")
	}
	return nil
}

func checkTableNumber(db *gorm.DB, number int, exceptID uint) error {
	if number <= 0 {
		return apperr.Validation("number must be positive")
	}
	var count int64
	if err := db.Model(&models.Table{}).Where("number = ? AND id <> ?", number, exceptID).Count(&count).Error; err != nil {
		return apperr.FromDB(err, "")
	}
	if count > 0 {
		return apperr.Validation("table number is already in use")
	}
	return nil
}

// GET /api/tables
func ListTablesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.WithContext(c.UserContext()).Model(&models.Table{})
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var tables []models.Table
		if err := dbq.Order("number asc").Find(&tables).Error; err != nil {
			return apperr.Internal(err, "could not list tables")
		}

		res := make([]TableResponse, 0, len(tables))
		for i := range tables {
			res = append(res, tableResponse(&tables[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/tables/:id
func GetTableHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "table")
		if err != nil {
			return err
		}
		var t models.Table
		if err := db.WithContext(c.UserContext()).First(&t, id).Error; err != nil {
			return apperr.FromDB(err, "table not found")
		}
		return c.JSON(tableResponse(&t))
	}
}

// POST /api/tables
func CreateTableHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTableRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		dbc := db.WithContext(c.UserContext())

		if body.Capacity <= 0 {
			return apperr.Validation("capacity must be positive")
		}
		status := models.TableFree
		if body.Status != "" {
			status = models.TableStatus(body.Status)
			if !status.Valid() {
				return apperr.Validation("status must be one of free, occupied, reserved")
			}
		}
		if err := checkTableNumber(dbc, body.Number, 0); err != nil {
			return err
		}
		if body.WaiterID != nil {
			if err := checkWaiter(dbc, *body.WaiterID); err != nil {
				return err
			}
		}

		t := models.Table{
			Number:   body.Number,
			Capacity: body.Capacity,
			Status:   status,
			WaiterID: body.WaiterID,
		}
		if err := dbc.Create(&t).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return c.Status(fiber.StatusCreated).JSON(tableResponse(&t))
	}
}

// PUT /api/tables/:id
func UpdateTableHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "table")
		if err != nil {
			return err
		}
		dbc := db.WithContext(c.UserContext())

		var t models.Table
		if err := dbc.First(&t, id).Error; err != nil {
			return apperr.FromDB(err, "table not found")
		}

		var body UpdateTableRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}

		if body.Number != nil {
			if err := checkTableNumber(dbc, *body.Number, t.ID); err != nil {
				return err
			}
			t.Number = *body.Number
		}
		if body.Capacity != nil {
			if *body.Capacity <= 0 {
				return apperr.Validation("capacity must be positive")
			}
			t.Capacity = *body.Capacity
		}
		if body.Status != nil {
			status := models.TableStatus(*body.Status)
			if !status.Valid() {
				return apperr.Validation("status must be one of free, occupied, reserved")
			}
			t.Status = status
		}
		if body.WaiterID != nil {
			if err := checkWaiter(dbc, *body.WaiterID); err != nil {
				return err
			}
			t.WaiterID = body.WaiterID
		} else if body.Unassign {
			t.WaiterID = nil
		}

		if err := dbc.Save(&t).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return c.JSON(tableResponse(&t))
	}
}

// DELETE /api/tables/:id
func DeleteTableHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "table")
		if err != nil {
			return err
		}
		res := db.WithContext(c.UserContext()).Delete(&models.Table{}, id)
		if res.Error != nil {
			return apperr.FromDB(res.Error, "")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("table not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
