package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

type MenuItem struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:150;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Available   bool            `gorm:"not null"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL"`
	Image       string          `gorm:"size:255"` // relative to the media root
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InventoryItem tracks on-hand stock for exactly one menu item.
type InventoryItem struct {
	ID          uint     `gorm:"primaryKey"`
	MenuItemID  uint     `gorm:"uniqueIndex;not null"`
	MenuItem    MenuItem `gorm:"constraint:OnDelete:CASCADE"`
	Quantity    int      `gorm:"not null"`
	LastUpdated time.Time `gorm:"autoUpdateTime"`
}
