package server

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/access"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/audit"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/billing"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/catalog"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/discount"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/metrics"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/ordering"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/report"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/staff"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func registerRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register/customer", auth.RegisterCustomerHandler(db))
	api.Post("/auth/token", tokenLimiter(cfg), auth.TokenHandler(cfg, db))
	api.Post("/auth/token/refresh", auth.RefreshHandler(cfg, db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg, db))

	protected.Get("/auth/me", auth.MeHandler())

	// Staff administration
	staffRoutes := protected.Group("/admin/staff", access.Require(access.ResourceStaff))
	staffRoutes.Get("/", staff.ListHandler(db))
	staffRoutes.Post("/", staff.CreateHandler(db))
	staffRoutes.Patch("/:id", staff.ReassignHandler(db))
	staffRoutes.Patch("/:id/disable", staff.DisableHandler(db))

	// Tables
	tables := access.Require(access.ResourceTables)
	protected.Get("/tables", tables, catalog.ListTablesHandler(db))
	protected.Post("/tables", tables, catalog.CreateTableHandler(db))
	protected.Get("/tables/:id", tables, catalog.GetTableHandler(db))
	protected.Put("/tables/:id", tables, catalog.UpdateTableHandler(db))
	protected.Delete("/tables/:id", tables, catalog.DeleteTableHandler(db))

	// Menu
	media := catalog.Media{Path: cfg.MediaPath, URLPrefix: cfg.MediaURLPrefix}
	menu := access.Require(access.ResourceMenuItems)
	protected.Get("/categories", access.Require(access.ResourceCategories), catalog.ListCategoriesHandler(db))
	protected.Get("/menu-items", menu, catalog.ListMenuItemsHandler(db, media))
	protected.Post("/menu-items", menu, catalog.CreateMenuItemHandler(db, media))
	protected.Get("/menu-items/:id", menu, catalog.GetMenuItemHandler(db, media))
	protected.Put("/menu-items/:id", menu, catalog.UpdateMenuItemHandler(db, media))
	protected.Delete("/menu-items/:id", menu, catalog.DeleteMenuItemHandler(db))
	protected.Post("/menu-items/:id/image", menu, catalog.UploadMenuItemImageHandler(db, media))

	// Inventory
	inventory := access.Require(access.ResourceInventory)
	protected.Get("/inventory", inventory, catalog.ListInventoryHandler(db))
	protected.Post("/inventory", inventory, catalog.CreateInventoryItemHandler(db))
	protected.Get("/inventory/:id", inventory, catalog.GetInventoryItemHandler(db))
	protected.Put("/inventory/:id", inventory, catalog.UpdateInventoryItemHandler(db))
	protected.Delete("/inventory/:id", inventory, catalog.DeleteInventoryItemHandler(db))

	// Discount codes
	discounts := access.Require(access.ResourceDiscounts)
	protected.Get("/discount-codes/validate/:code", discount.ValidateHandler(db))
	protected.Get("/discount-codes", discounts, discount.ListHandler(db))
	protected.Post("/discount-codes", discounts, discount.CreateHandler(db))
	protected.Put("/discount-codes/:id", discounts, discount.UpdateHandler(db))

	// Cancelling and paying are for staff or the owning customer; the
	// services check ownership.
	staffOrCustomer := access.RequireRoles(
		models.RoleAdmin, models.RoleManager, models.RoleChef, models.RoleWaiter, models.RoleCustomer,
	)

	// Orders; listing and detail are scoped by the services
	protected.Get("/orders", ordering.ListHandler(db))
	protected.Post("/orders", access.Require(access.ResourceOrderCreate), ordering.CreateHandler(db))
	protected.Get("/orders/:id", ordering.GetHandler(db))
	protected.Patch("/orders/:id/status", access.Require(access.ResourceOrderStatus), ordering.UpdateStatusHandler(db))
	protected.Post("/orders/:id/cancel", staffOrCustomer, ordering.CancelHandler(db))
	protected.Patch("/orders/:id/estimate", access.Require(access.ResourceEstimate), ordering.EstimateHandler(db))
	protected.Delete("/orders/:id", access.Require(access.ResourceOrderDelete), ordering.DeleteHandler(db))
	protected.Post("/orders/:id/invoice", access.Require(access.ResourceInvoicing), billing.IssueInvoiceHandler(db))

	protected.Get("/order-items", ordering.ListItemsHandler(db))
	protected.Get("/order-items/:id", ordering.GetItemHandler(db))

	// Billing
	protected.Get("/invoices", billing.ListInvoicesHandler(db))
	protected.Get("/invoices/:id", billing.GetInvoiceHandler(db))
	protected.Post("/invoices/:id/payments", staffOrCustomer, billing.CreatePaymentHandler(db))
	protected.Get("/payments", billing.ListPaymentsHandler(db))
	protected.Get("/payments/:id", billing.GetPaymentHandler(db))
	protected.Patch("/payments/:id", access.Require(access.ResourcePaymentEdit), billing.UpdatePaymentHandler(db))

	// Audit logs & reports
	protected.Get("/audit-logs", access.Require(access.ResourceAuditLogs), audit.ListAuditLogsHandler(db))
	protected.Get("/reports/orders.xlsx", access.Require(access.ResourceReports), report.OrdersXLSXHandler(db))
}
