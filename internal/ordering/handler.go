package ordering

import (
	"strconv"
	"strings"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderItemResponse struct {
	ID           uint   `json:"id"`
	OrderID      uint   `json:"order_id"`
	MenuItemID   uint   `json:"menu_item"`
	MenuItemName string `json:"menu_item_name"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	Note         string `json:"note"`
	LineTotal    string `json:"line_total"`
}

type DiscountSummary struct {
	Code       string `json:"code"`
	PercentOff int    `json:"percent_off"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	CustomerID    *uint               `json:"customer_id"`
	TableID       *uint               `json:"table_id"`
	Status        string              `json:"status"`
	EstimatedTime *string             `json:"estimated_time"`
	Discount      *DiscountSummary    `json:"discount"`
	Items         []OrderItemResponse `json:"items"`
	Total         string              `json:"total"`
	Payable       string              `json:"payable"`
	CreatedAt     string              `json:"created_at"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type EstimateRequest struct {
	EstimatedTime time.Time `json:"estimated_time"`
}

func itemResponse(it *models.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:           it.ID,
		OrderID:      it.OrderID,
		MenuItemID:   it.MenuItemID,
		MenuItemName: it.MenuItem.Name,
		UnitPrice:    it.MenuItem.Price.StringFixed(2),
		Quantity:     it.Quantity,
		Note:         it.Note,
		LineTotal:    it.LineTotal().StringFixed(2),
	}
}

func ToResponse(o *models.Order) OrderResponse {
	res := OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		TableID:    o.TableID,
		Status:     string(o.Status),
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
		Total:      o.Total().StringFixed(2),
		Payable:    o.Payable().StringFixed(2),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.EstimatedTime != nil {
		s := o.EstimatedTime.UTC().Format(time.RFC3339)
		res.EstimatedTime = &s
	}
	if o.Discount != nil {
		res.Discount = &DiscountSummary{Code: o.Discount.Code, PercentOff: o.Discount.PercentOff}
	}
	for i := range o.Items {
		res.Items = append(res.Items, itemResponse(&o.Items[i]))
	}
	return res
}

func parseID(c *fiber.Ctx, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s id", what)
	}
	return uint(id), nil
}

// GET /api/orders?status=pending
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, err := List(c.UserContext(), db, auth.CurrentPrincipal(c), c.Query("status"))
		if err != nil {
			return err
		}
		res := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			res = append(res, ToResponse(&orders[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/orders
func CreateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		o, err := Create(c.UserContext(), db, auth.CurrentPrincipal(c), body, time.Now())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(o))
	}
}

// GET /api/orders/:id
func GetHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "order")
		if err != nil {
			return err
		}
		o, err := Get(c.UserContext(), db, auth.CurrentPrincipal(c), id)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(o))
	}
}

// PATCH /api/orders/:id/status
func UpdateStatusHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "order")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		target := models.OrderStatus(strings.ToLower(strings.TrimSpace(body.Status)))

		o, err := UpdateStatus(c.UserContext(), db, auth.CurrentPrincipal(c), id, target)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(o))
	}
}

// POST /api/orders/:id/cancel
func CancelHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "order")
		if err != nil {
			return err
		}
		o, err := Cancel(c.UserContext(), db, auth.CurrentPrincipal(c), id)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(o))
	}
}

// PATCH /api/orders/:id/estimate
func EstimateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "order")
		if err != nil {
			return err
		}
		var body EstimateRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("estimated_time must be an RFC 3339 timestamp")
		}
		o, err := SetEstimate(c.UserContext(), db, auth.CurrentPrincipal(c), id, body.EstimatedTime)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(o))
	}
}

// DELETE /api/orders/:id
func DeleteHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "order")
		if err != nil {
			return err
		}
		if err := Delete(c.UserContext(), db, auth.CurrentPrincipal(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/order-items
func ListItemsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := ListItems(c.UserContext(), db, auth.CurrentPrincipal(c))
		if err != nil {
			return err
		}
		res := make([]OrderItemResponse, 0, len(items))
		for i := range items {
			res = append(res, itemResponse(&items[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/order-items/:id
func GetItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "order item")
		if err != nil {
			return err
		}
		it, err := GetItem(c.UserContext(), db, auth.CurrentPrincipal(c), id)
		if err != nil {
			return err
		}
		return c.JSON(itemResponse(it))
	}
}
