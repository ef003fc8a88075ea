// Package report exports order history as spreadsheets.
package report

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const ordersSheet = "Orders"

// OrderRow is one line of the orders report.
type OrderRow struct {
	ID        uint
	CreatedAt time.Time
	Customer  string
	Table     string
	Status    string
	Items     int
	Total     float64
	Discount  string
	Payable   float64
}

// Period bounds the report; zero values leave that side open.
type Period struct {
	From time.Time
	To   time.Time
}

func OrderRows(ctx context.Context, db *gorm.DB, period Period) ([]OrderRow, error) {
	q := db.WithContext(ctx).
		Preload("Items.MenuItem").Preload("Discount").Preload("Table")
	if !period.From.IsZero() {
		q = q.Where("created_at >= ?", period.From)
	}
	if !period.To.IsZero() {
		q = q.Where("created_at < ?", period.To)
	}

	var orders []models.Order
	if err := q.Order("created_at asc, id asc").Find(&orders).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}

	names, err := customerNames(db.WithContext(ctx), orders)
	if err != nil {
		return nil, err
	}

	rows := make([]OrderRow, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		row := OrderRow{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			Status:    string(o.Status),
			Total:     o.Total().InexactFloat64(),
			Payable:   o.Payable().InexactFloat64(),
		}
		if o.CustomerID != nil {
			row.Customer = names[*o.CustomerID]
		}
		if o.Table != nil {
			row.Table = strconv.Itoa(o.Table.Number)
		}
		if o.Discount != nil {
			row.Discount = o.Discount.Code
		}
		for _, it := range o.Items {
			row.Items += it.Quantity
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// customerNames maps customer profile ids to usernames.
func customerNames(db *gorm.DB, orders []models.Order) (map[uint]string, error) {
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		if o.CustomerID != nil {
			ids = append(ids, *o.CustomerID)
		}
	}
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var pairs []struct {
		ID       uint
		Username string
	}
	err := db.Table("customer_profiles").
		Select("customer_profiles.id, users.username").
		Joins("JOIN users ON users.id = customer_profiles.user_id").
		Where("customer_profiles.id IN ?", ids).
		Scan(&pairs).Error
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	for _, p := range pairs {
		names[p.ID] = p.Username
	}
	return names, nil
}

// OrdersWorkbook renders rows into an xlsx file.
func OrdersWorkbook(rows []OrderRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return nil, err
	}

	header := []any{"ID", "Created", "Customer", "Table", "Status", "Items", "Total", "Discount", "Payable"}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.ID,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			r.Customer,
			r.Table,
			r.Status,
			r.Items,
			r.Total,
			r.Discount,
			r.Payable,
		}
		if err := f.SetSheetRow(ordersSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(ordersSheet, "B", "B", 18)
	_ = f.SetColWidth(ordersSheet, "C", "C", 20)
	_ = f.SetColWidth(ordersSheet, "H", "H", 14)

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(ordersSheet, "A1", "I1", style)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err == nil && len(rows) > 0 {
		last := strconv.Itoa(len(rows) + 1)
		_ = f.SetCellStyle(ordersSheet, "G2", "G"+last, money)
		_ = f.SetCellStyle(ordersSheet, "I2", "I"+last, money)
	}

	return f.WriteToBuffer()
}
