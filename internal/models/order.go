package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

type Order struct {
	ID            uint             `gorm:"primaryKey"`
	CustomerID    *uint            `gorm:"index"`
	Customer      *CustomerProfile `gorm:"constraint:OnDelete:SET NULL"`
	TableID       *uint            `gorm:"index"`
	Table         *Table           `gorm:"constraint:OnDelete:SET NULL"`
	Status        OrderStatus      `gorm:"size:20;not null;index"`
	EstimatedTime *time.Time
	DiscountID    *uint
	Discount      *DiscountCode `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt     time.Time     `gorm:"index"`
	UpdatedAt     time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Total is recomputed from the loaded items on every call; Items.MenuItem
// must be preloaded.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal())
	}
	return total
}

// Payable applies the order's discount to Total, rounded to cents.
func (o *Order) Payable() decimal.Decimal {
	total := o.Total()
	if o.Discount == nil || o.Discount.PercentOff <= 0 {
		return total
	}
	pct := o.Discount.PercentOff
	if pct > 100 {
		pct = 100
	}
	return total.Mul(decimal.NewFromInt(int64(100 - pct))).Div(decimal.NewFromInt(100)).Round(2)
}

type OrderItem struct {
	ID         uint     `gorm:"primaryKey"`
	OrderID    uint     `gorm:"index;not null"`
	MenuItemID uint     `gorm:"index;not null"`
	MenuItem   MenuItem `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity   int      `gorm:"not null"`
	Note       string   `gorm:"type:text"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.MenuItem.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
