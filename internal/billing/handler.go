package billing

import (
	"strconv"
	"time"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/apperr"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InvoiceResponse struct {
	ID         uint   `json:"id"`
	Number     string `json:"number"`
	OrderID    uint   `json:"order_id"`
	CustomerID *uint  `json:"customer_id"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	IssuedAt   string `json:"issued_at"`
}

type PaymentResponse struct {
	ID            uint    `json:"id"`
	InvoiceID     uint    `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func invoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		OrderID:    inv.OrderID,
		CustomerID: inv.CustomerID,
		Amount:     inv.Amount.StringFixed(2),
		Status:     string(inv.Status),
		IssuedAt:   inv.IssuedAt.UTC().Format(time.RFC3339),
	}
}

func paymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.Invoice.Number,
		Amount:        p.Invoice.Amount.StringFixed(2),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseID(c *fiber.Ctx, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s id", what)
	}
	return uint(id), nil
}

// POST /api/orders/:id/invoice
func IssueInvoiceHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := parseID(c, "order")
		if err != nil {
			return err
		}
		inv, err := IssueInvoice(c.UserContext(), db, auth.CurrentPrincipal(c), orderID, time.Now())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(invoiceResponse(inv))
	}
}

// GET /api/invoices
func ListInvoicesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		invoices, err := ListInvoices(c.UserContext(), db, auth.CurrentPrincipal(c))
		if err != nil {
			return err
		}
		res := make([]InvoiceResponse, 0, len(invoices))
		for i := range invoices {
			res = append(res, invoiceResponse(&invoices[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "invoice")
		if err != nil {
			return err
		}
		inv, err := GetInvoice(c.UserContext(), db, auth.CurrentPrincipal(c), id)
		if err != nil {
			return err
		}
		return c.JSON(invoiceResponse(inv))
	}
}

// POST /api/invoices/:id/payments
func CreatePaymentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "invoice")
		if err != nil {
			return err
		}
		var body PaymentInput
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return apperr.Validation("invalid request body")
			}
		}
		pay, err := CreatePayment(c.UserContext(), db, auth.CurrentPrincipal(c), id, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(paymentResponse(pay))
	}
}

// GET /api/payments
func ListPaymentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payments, err := ListPayments(c.UserContext(), db, auth.CurrentPrincipal(c))
		if err != nil {
			return err
		}
		res := make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			res = append(res, paymentResponse(&payments[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/payments/:id
func GetPaymentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "payment")
		if err != nil {
			return err
		}
		pay, err := GetPayment(c.UserContext(), db, auth.CurrentPrincipal(c), id)
		if err != nil {
			return err
		}
		return c.JSON(paymentResponse(pay))
	}
}

// PATCH /api/payments/:id
func UpdatePaymentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "payment")
		if err != nil {
			return err
		}
		var body PaymentUpdate
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		pay, err := UpdatePayment(c.UserContext(), db, auth.CurrentPrincipal(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(paymentResponse(pay))
	}
}
