// Package billing issues invoices for finished orders and tracks their payments.
package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/access"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/audit"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentInput struct {
	TransactionID *string `json:"transaction_id"`
}

type PaymentUpdate struct {
	Status        *string `json:"status"`
	TransactionID *string `json:"transaction_id"`
}

// canSeeAll holds for the staff roles that issue, collect and settle bills.
func canSeeAll(p *auth.Principal) bool {
	return access.Staff.Has(auth.RoleOf(p))
}

// IssueInvoice bills an order that has been served or paid. The amount is the
// order's payable total at this moment and does not follow later changes.
func IssueInvoice(ctx context.Context, db *gorm.DB, p *auth.Principal, orderID uint, now time.Time) (*models.Invoice, error) {
	if !access.CanWrite(access.ResourceInvoicing, auth.RoleOf(p)) {
		return nil, apperr.Authorization("you cannot issue invoices")
	}

	var inv models.Invoice
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		err := tx.Preload("Items.MenuItem").Preload("Discount").First(&o, orderID).Error
		if err != nil {
			return apperr.FromDB(err, "order not found")
		}
		if o.Status != models.OrderServed && o.Status != models.OrderPaid {
			return apperr.Validation("only served or paid orders can be invoiced")
		}

		var existing int64
		if err := tx.Model(&models.Invoice{}).Where("order_id = ?", o.ID).Count(&existing).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if existing > 0 {
			return apperr.Conflict("order already has an invoice")
		}

		inv = models.Invoice{
			Number:     uuid.NewString(),
			OrderID:    o.ID,
			CustomerID: o.CustomerID,
			Amount:     o.Payable(),
			Status:     models.InvoiceIssued,
			IssuedAt:   now.UTC(),
		}
		if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      p.UserID,
			UserName:    p.Username,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("invoice %s for order %d", inv.Number, o.ID),
			After:       map[string]any{"amount": inv.Amount.StringFixed(2)},
		})
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func ListInvoices(ctx context.Context, db *gorm.DB, p *auth.Principal) ([]models.Invoice, error) {
	q := db.WithContext(ctx)
	switch {
	case canSeeAll(p):
	case auth.RoleOf(p) == models.RoleCustomer && p.CustomerID != nil:
		q = q.Where("customer_id = ?", *p.CustomerID)
	default:
		return []models.Invoice{}, nil
	}

	var invoices []models.Invoice
	if err := q.Order("issued_at DESC, id DESC").Find(&invoices).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return invoices, nil
}

func GetInvoice(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := db.WithContext(ctx).First(&inv, id).Error; err != nil {
		return nil, apperr.FromDB(err, "invoice not found")
	}
	if !access.CanAccessOwned(p, inv.CustomerID) {
		return nil, apperr.Authorization("you cannot access this invoice")
	}
	return &inv, nil
}

// CreatePayment opens the single payment of an invoice. Staff and the
// invoice's customer may do this.
func CreatePayment(ctx context.Context, db *gorm.DB, p *auth.Principal, invoiceID uint, in PaymentInput) (*models.Payment, error) {
	var pay models.Payment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, invoiceID).Error; err != nil {
			return apperr.FromDB(err, "invoice not found")
		}
		if !access.CanAccessOwned(p, inv.CustomerID) {
			return apperr.Authorization("you cannot pay this invoice")
		}
		if inv.Status == models.InvoicePaid {
			return apperr.Validation("invoice is already paid")
		}

		var existing int64
		if err := tx.Model(&models.Payment{}).Where("invoice_id = ?", inv.ID).Count(&existing).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		if existing > 0 {
			return apperr.Conflict("invoice already has a payment")
		}

		pay = models.Payment{
			InvoiceID:     inv.ID,
			Status:        models.PaymentPending,
			TransactionID: trimmed(in.TransactionID),
		}
		if err := tx.Omit(clause.Associations).Create(&pay).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadPayment(db.WithContext(ctx), pay.ID)
}

func loadPayment(db *gorm.DB, id uint) (*models.Payment, error) {
	var pay models.Payment
	if err := db.Preload("Invoice").First(&pay, id).Error; err != nil {
		return nil, apperr.FromDB(err, "payment not found")
	}
	return &pay, nil
}

func ListPayments(ctx context.Context, db *gorm.DB, p *auth.Principal) ([]models.Payment, error) {
	q := db.WithContext(ctx).Model(&models.Payment{}).Preload("Invoice")
	switch {
	case canSeeAll(p):
	case auth.RoleOf(p) == models.RoleCustomer && p.CustomerID != nil:
		q = q.Joins("JOIN invoices ON invoices.id = payments.invoice_id").
			Where("invoices.customer_id = ?", *p.CustomerID)
	default:
		return []models.Payment{}, nil
	}

	var payments []models.Payment
	if err := q.Order("payments.created_at DESC, payments.id DESC").Find(&payments).Error; err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return payments, nil
}

func GetPayment(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint) (*models.Payment, error) {
	pay, err := loadPayment(db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessOwned(p, pay.Invoice.CustomerID) {
		return nil, apperr.Authorization("you cannot access this payment")
	}
	return pay, nil
}

// UpdatePayment records the outcome of a payment. The invoice is paid exactly
// while its payment is completed.
func UpdatePayment(ctx context.Context, db *gorm.DB, p *auth.Principal, id uint, in PaymentUpdate) (*models.Payment, error) {
	if !access.CanWrite(access.ResourcePaymentEdit, auth.RoleOf(p)) {
		return nil, apperr.Authorization("you cannot update payments")
	}

	var status models.PaymentStatus
	if in.Status != nil {
		status = models.PaymentStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !status.Valid() {
			return nil, apperr.Validation("status must be one of pending, completed, failed, refunded")
		}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pay models.Payment
		if err := tx.First(&pay, id).Error; err != nil {
			return apperr.FromDB(err, "payment not found")
		}
		before := pay.Status

		updates := map[string]any{}
		if in.TransactionID != nil {
			updates["transaction_id"] = trimmed(in.TransactionID)
		}
		if status != "" {
			updates["status"] = status
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&pay).Updates(updates).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		if status == "" || status == before {
			return nil
		}
		invStatus := models.InvoiceIssued
		if status == models.PaymentCompleted {
			invStatus = models.InvoicePaid
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", pay.InvoiceID).Update("status", invStatus).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      p.UserID,
			UserName:    p.Username,
			EntityType:  "payment",
			EntityID:    pay.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("payment %s -> %s", before, status),
			Before:      map[string]any{"status": before},
			After:       map[string]any{"status": status},
		})
	})
	if err != nil {
		return nil, err
	}
	return loadPayment(db.WithContext(ctx), id)
}

// trimmed turns a blank transaction id into nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
