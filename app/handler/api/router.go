package handler

import (
	"backoffice-service/app/middleware"
	"backoffice-service/config"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Inventory *InventoryHandler
	Catalog   *CatalogHandler
	Customer  *CustomerHandler
	Coupon    *CouponHandler
	Order     *OrderHandler
	Payment   *PaymentHandler
	Shipment  *ShipmentHandler
	Return    *ReturnHandler
	Audit     *AuditHandler
}

func SetupRouter(app *fiber.App, h Handlers, cfg *config.Config) {

	api := app.Group("/backoffice-service").Use(middleware.Auth(cfg.Jwt.SecretKey))

	api.Post("/categories", h.Catalog.CreateCategory)
	api.Get("/categories", h.Catalog.ListCategories)
	api.Post("/products", h.Catalog.CreateProduct)
	api.Get("/products", h.Catalog.ListProducts)
	api.Get("/products/:id", h.Catalog.GetProduct)
	api.Delete("/products/:id", h.Catalog.DeleteProduct)

	api.Post("/skus", h.Inventory.Create)
	api.Get("/skus", h.Inventory.List)
	api.Get("/skus/alerts", h.Inventory.LowStockAlerts)
	api.Get("/skus/:id", h.Inventory.GetByID)
	api.Post("/skus/:id/replenish", h.Inventory.Replenish)
	api.Post("/price-adjustments", h.Inventory.AdjustPrices)

	api.Post("/customers", h.Customer.Create)
	api.Get("/customers", h.Customer.List)
	api.Get("/customers/:id", h.Customer.GetByID)
	api.Get("/customers/:id/has-orders", h.Customer.HasOrders)
	api.Get("/customers/:id/loyalty", h.Customer.LoyaltyPoints)
	api.Post("/addresses", h.Customer.CreateAddress)
	api.Get("/customers/:id/addresses", h.Customer.ListAddresses)

	api.Post("/coupons", h.Coupon.Create)
	api.Get("/coupons", h.Coupon.List)
	api.Get("/coupons/:code/validate", h.Coupon.Validate)
	api.Post("/coupons/apply", h.Coupon.Apply)

	api.Post("/orders", h.Order.Create)
	api.Get("/orders", h.Order.List)
	api.Get("/orders/:id", h.Order.GetByID)
	api.Patch("/orders/:id/status", h.Order.Transition)
	api.Post("/orders/:id/cancel", h.Order.Cancel)
	api.Delete("/orders/:id", h.Order.Delete)
	api.Get("/orders/:id/timeline", h.Order.Timeline)
	api.Get("/orders/:order_id/return-eligibility", h.Return.Eligibility)

	api.Post("/payments", h.Payment.Process)
	api.Get("/payments", h.Payment.List)
	api.Delete("/payments/:id", h.Payment.Delete)

	api.Post("/shipments", h.Shipment.Create)
	api.Get("/shipments", h.Shipment.List)
	api.Patch("/shipments/:id/status", h.Shipment.UpdateStatus)

	api.Post("/returns", h.Return.Create)
	api.Get("/returns", h.Return.List)
	api.Patch("/returns/:id/status", h.Return.Transition)
	api.Get("/order-lines/:line_id/refund-quote", h.Return.RefundQuote)

	internal := app.Group("/internal/backoffice-service").Use(middleware.AuthInternal(cfg))
	internal.Get("/audit/:table/:id", h.Audit.History)
	internal.Get("/audit", h.Audit.Search)
}
