// Package ordering owns the order aggregate: an order, its items and the
// totals derived from them.
package ordering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/access"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/audit"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/discount"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/metrics"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemInput struct {
	MenuItemID uint   `json:"menu_item"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
}

type CreateInput struct {
	TableID      *uint       `json:"table"`
	DiscountCode string      `json:"discount_code"`
	Items        []ItemInput `json:"items"`
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Preload("Items.MenuItem").Preload("Discount")
}

func loadOrder(db *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	if err := withDetails(db).First(&o, id).Error; err != nil {
		return nil, apperr.FromDB(err, "order not found")
	}
	return &o, nil
}

// scopeByOwner narrows q to what p may list. ownerColumn holds the owning
// customer profile id. The bool is false when p may see nothing at all.
func scopeByOwner(q *gorm.DB, p *auth.Principal, full access.RoleSet, ownerColumn string) (*gorm.DB, bool) {
	role := auth.RoleOf(p)
	if full.Has(role) {
		return q, true
	}
	if role == models.RoleCustomer && p.CustomerID != nil {
		return q.Where(ownerColumn+" = ?", *p.CustomerID), true
	}
	return q, false
}

func checkItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperr.Validation("an order needs at least one item")
	}
	for i, it := range items {
		if it.MenuItemID == 0 {
			return apperr.Validation("items[%d]: menu_item is required", i)
		}
		if it.Quantity < 1 {
			return apperr.Validation("items[%d]: quantity must be a positive integer", i)
		}
	}
	return nil
}

// Create places an order for the calling customer. The order row, its items
// and the discount claim commit together or not at all.
func Create(ctx context.Context, db *gorm.DB, p *auth.Principal, in CreateInput, now time.Time) (*models.Order, error) {
	if auth.RoleOf(p) != models.RoleCustomer || p.CustomerID == nil {
		return nil, apperr.Authorization("only customers can create orders")
	}
	if err := checkItems(in.Items); err != nil {
		return nil, err
	}

	var orderID uint
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.TableID != nil {
			var count int64
			if err := tx.Model(&models.Table{}).Where("id = ?", *in.TableID).Count(&count).Error; err != nil {
				return apperr.FromDB(err, "")
			}
			if count == 0 {
				return apperr.Validation("table not found")
			}
		}

		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.MenuItemID)
		}
		var menu []models.MenuItem
		if err := tx.Where("id IN ?", ids).Find(&menu).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		byID := make(map[uint]*models.MenuItem, len(menu))
		for i := range menu {
			byID[menu[i].ID] = &menu[i]
		}
		for _, it := range in.Items {
			m, ok := byID[it.MenuItemID]
			if !ok {
				return apperr.Validation("menu item %d not found", it.MenuItemID)
			}
			if !m.Available {
				return apperr.Validation("%s is not available", m.Name)
			}
		}

		order := models.Order{
			CustomerID: p.CustomerID,
			TableID:    in.TableID,
			Status:     models.OrderPending,
		}
		if code := strings.TrimSpace(in.DiscountCode); code != "" {
			d, err := discount.Claim(tx, code, now)
			if err != nil {
				return err
			}
			order.DiscountID = &d.ID
		}

		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: it.MenuItemID,
				Quantity:   it.Quantity,
				Note:       it.Note,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	return loadOrder(db.WithContext(ctx), orderID)
}

// List returns the orders p may see, most recent first. Staff see every
// order, a customer sees their own and anyone else gets an empty list.
func List(ctx context.Context, db *gorm.DB, p *auth.Principal, status string) ([]models.Order, error) {
	q, ok := scopeByOwner(withDetails(db.WithContext(ctx)), p, access.Staff, "customer_id")
	if !ok {
		return []models.Order{}, nil
	}
	if status != "" {
		q = q.Where("status = ?", strings.ToLower(status))
	}

	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return orders, nil
}

// Get returns one order. Existence is checked before ownership, so a customer
// asking for someone else's order is denied rather than told it is missing.
func Get(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint) (*models.Order, error) {
	o, err := loadOrder(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessOwned(p, o.CustomerID) {
		return nil, apperr.Authorization("you cannot access this order")
	}
	return o, nil
}

// move performs a guarded status change from o.Status to target and records
// it in the audit log. A concurrent writer that got there first makes the
// update match no rows.
func move(tx *gorm.DB, p *auth.Principal, o *models.Order, target models.OrderStatus) error {
	if err := CanTransition(o.Status, target); err != nil {
		return err
	}

	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", o.ID, o.Status).
		Update("status", target)
	if res.Error != nil {
		return apperr.FromDB(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("order status was changed by another request")
	}

	if err := audit.WriteLog(tx, audit.LogOptions{
		UserID:      p.UserID,
		UserName:    p.Username,
		EntityType:  "order",
		EntityID:    o.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("status %s -> %s", o.Status, target),
		Before:      map[string]any{"status": o.Status},
		After:       map[string]any{"status": target},
	}); err != nil {
		return err
	}

	o.Status = target
	return nil
}

// UpdateStatus is the staff transition. The target is checked before the
// order is even loaded, so a bad target never touches the row.
func UpdateStatus(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint, target models.OrderStatus) (*models.Order, error) {
	if !access.CanWrite(access.ResourceOrderStatus, auth.RoleOf(p)) {
		return nil, apperr.Authorization("only staff can change order status")
	}
	if !StaffTargets[target] {
		return nil, apperr.Validation("status must be one of preparing, ready, served, paid, cancelled")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, id).Error; err != nil {
			return apperr.FromDB(err, "order not found")
		}
		return move(tx, p, &o, target)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(target)).Inc()
	return loadOrder(db.WithContext(ctx), id)
}

// Cancel is open to staff and to the customer who owns the order.
func Cancel(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint) (*models.Order, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, id).Error; err != nil {
			return apperr.FromDB(err, "order not found")
		}
		if !access.CanAccessOwned(p, o.CustomerID) {
			return apperr.Authorization("you cannot cancel this order")
		}
		return move(tx, p, &o, models.OrderCancelled)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(models.OrderCancelled)).Inc()
	return loadOrder(db.WithContext(ctx), id)
}

func SetEstimate(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint, at time.Time) (*models.Order, error) {
	if !access.CanWrite(access.ResourceEstimate, auth.RoleOf(p)) {
		return nil, apperr.Authorization("you cannot set the estimated time")
	}
	if at.IsZero() {
		return nil, apperr.Validation("estimated_time is required")
	}

	dbc := db.WithContext(ctx)
	var o models.Order
	if err := dbc.First(&o, id).Error; err != nil {
		return nil, apperr.FromDB(err, "order not found")
	}
	if o.Status.IsTerminal() {
		return nil, apperr.Validation("order is already %s", o.Status)
	}
	if err := dbc.Model(&o).Update("estimated_time", at.UTC()).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return loadOrder(dbc, id)
}

// Delete removes an order with its items, invoice and payment.
func Delete(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint) error {
	if !access.CanWrite(access.ResourceOrderDelete, auth.RoleOf(p)) {
		return apperr.Authorization("you cannot delete orders")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, id).Error; err != nil {
			return apperr.FromDB(err, "order not found")
		}

		invoices := tx.Model(&models.Invoice{}).Select("id").Where("order_id = ?", id)
		if err := tx.Where("invoice_id IN (?)", invoices).Delete(&models.Payment{}).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if err := tx.Delete(&o).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      p.UserID,
			UserName:    p.Username,
			EntityType:  "order",
			EntityID:    o.ID,
			Action:      models.AuditActionDelete,
			Description: "order deleted",
			Before:      map[string]any{"status": o.Status, "customer_id": o.CustomerID},
		})
	})
}

// ListItems mirrors List for individual order lines.
func ListItems(ctx context.Context, db *gorm.DB, p *auth.Principal) ([]models.OrderItem, error) {
	q := db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Preload("MenuItem")
	q, ok := scopeByOwner(q, p, access.Staff, "orders.customer_id")
	if !ok {
		return []models.OrderItem{}, nil
	}

	var items []models.OrderItem
	if err := q.Order("order_items.id asc").Find(&items).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return items, nil
}

func GetItem(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint) (*models.OrderItem, error) {
	dbc := db.WithContext(ctx)
	var it models.OrderItem
	if err := dbc.Preload("MenuItem").First(&it, id).Error; err != nil {
		return nil, apperr.FromDB(err, "order item not found")
	}

	var o models.Order
	if err := dbc.Select("id", "customer_id").First(&o, it.OrderID).Error; err != nil {
		return nil, apperr.FromDB(err, "order not found")
	}
	if !access.CanAccessOwned(p, o.CustomerID) {
		return nil, apperr.Authorization("you cannot access this order item")
	}
	return &it, nil
}
