package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/application/order"
	"github.com/jhoicas/bakery-api/pkg/jwt"
	"github.com/jhoicas/bakery-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orders    *order.FulfillmentService
	Catalog   *catalog.Catalog
	Ledger    *ledger.Ledger
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Orders
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders, deps.Ledger, deps.Log)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/ledger", orderHandler.Ledger)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Put("/:id/status", orderHandler.UpdateStatus)

	// Products (alta, baja y disponibilidad solo admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Catalog, deps.Log)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id/availability", adminOnly, productHandler.SetAvailability)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Catalog, deps.Ledger, deps.Log)
	invGroup.Post("/adjustments", adminOnly, inventoryHandler.Adjust)
	invGroup.Get("/:productId/history", inventoryHandler.History)
	invGroup.Get("/:productId/reconcile", inventoryHandler.Reconcile)
}
