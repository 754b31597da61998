package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/usecase"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC  *usecase.WarehouseUseCase
	LotUC        *inventory.LotUseCase
	AllocationUC *inventory.AllocationUseCase
	TransferUC   *inventory.TransferUseCase
	AdjustmentUC *inventory.AdjustmentUseCase
	ExpiryUC     *inventory.ExpiryUseCase
	ReportUC     *inventory.ReportUseCase
	JWTSecret    string
	// Location zona horaria con la que se decide "hoy" en reportes y barrido manual.
	Location *time.Location
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token; el rol decide qué puede hacer cada usuario.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	admins := RequireRole(jwt.RoleAdmin)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admins, warehouseHandler.Create)
	warehouses.Get("/", readers, warehouseHandler.List)
	warehouses.Get("/:id", readers, warehouseHandler.GetByID)

	// Lots
	lots := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC, deps.ReportUC)
	lots.Post("/", writers, lotHandler.Create)
	lots.Post("/batch", writers, lotHandler.CreateBatch)
	lots.Get("/", readers, lotHandler.List)
	lots.Get("/:id", readers, lotHandler.GetByID)
	lots.Get("/:id/movements", readers, lotHandler.Movements)
	lots.Get("/:id/reconciliation", readers, lotHandler.Reconciliation)
	lots.Post("/:id/consume", writers, lotHandler.Consume)

	// Movement ledger
	protected.Get("/movements", readers, lotHandler.ListMovements)

	// FEFO allocations
	allocations := protected.Group("/allocations")
	allocationHandler := NewAllocationHandler(deps.AllocationUC)
	allocations.Post("/", writers, allocationHandler.Allocate)
	allocations.Post("/batch", writers, allocationHandler.AllocateBatch)
	allocations.Get("/preview", readers, allocationHandler.Preview)

	// Transfers (aprobación solo administrador)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", writers, transferHandler.Create)
	transfers.Get("/", readers, transferHandler.List)
	transfers.Get("/:id", readers, transferHandler.GetByID)
	transfers.Post("/:id/approve", admins, transferHandler.Approve)
	transfers.Post("/:id/reject", admins, transferHandler.Reject)

	// Adjustments (maker-checker)
	adjustments := protected.Group("/adjustments")
	adjustmentHandler := NewAdjustmentHandler(deps.AdjustmentUC)
	adjustments.Post("/", writers, adjustmentHandler.Create)
	adjustments.Get("/", readers, adjustmentHandler.List)
	adjustments.Get("/:id", readers, adjustmentHandler.GetByID)
	adjustments.Post("/:id/approve", admins, adjustmentHandler.Approve)
	adjustments.Post("/:id/reject", admins, adjustmentHandler.Reject)

	// Expiry y reportes
	expiryHandler := NewExpiryHandler(deps.ExpiryUC, deps.ReportUC, deps.Location)
	expiry := protected.Group("/expiry")
	expiry.Post("/sweep", admins, expiryHandler.Sweep)
	expiry.Get("/report", readers, expiryHandler.Report)
	protected.Get("/reports/stock-summary", readers, expiryHandler.StockSummary)
}
