package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
)

type Invoice struct {
	ID         uint             `gorm:"primaryKey"`
	Number     string           `gorm:"size:36;uniqueIndex;not null"`
	OrderID    uint             `gorm:"uniqueIndex;not null"`
	Order      Order            `gorm:"constraint:OnDelete:CASCADE"`
	CustomerID *uint            `gorm:"index"`
	Customer   *CustomerProfile `gorm:"constraint:OnDelete:SET NULL"`
	Amount     decimal.Decimal  `gorm:"type:decimal(10,2);not null"` // snapshot at issue time
	Status     InvoiceStatus    `gorm:"size:20;not null"`
	IssuedAt   time.Time        `gorm:"not null"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Payment struct {
	ID            uint          `gorm:"primaryKey"`
	InvoiceID     uint          `gorm:"uniqueIndex;not null"`
	Invoice       Invoice       `gorm:"constraint:OnDelete:CASCADE"`
	Status        PaymentStatus `gorm:"size:20;not null"`
	TransactionID *string       `gorm:"size:200"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
