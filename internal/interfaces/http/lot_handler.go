package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

// LotHandler ingresos, consultas y salidas manuales de lotes (protegido).
type LotHandler struct {
	uc      *inventory.LotUseCase
	reports *inventory.ReportUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *inventory.LotUseCase, reports *inventory.ReportUseCase) *LotHandler {
	return &LotHandler{uc: uc, reports: reports}
}

// Create godoc
// @Summary      Registrar ingreso de un lote
// @Description  Crea el lote y su movimiento INTAKE en la misma transacción.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "product_id, warehouse_id, quantity, unit_cost, fechas"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	lot, err := h.uc.CreateLot(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(lot))
}

// CreateBatch godoc
// @Summary      Registrar una donación con varias líneas
// @Description  Todas las líneas se registran o ninguna.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotsRequest  true  "warehouse_id e items"
// @Success      201   {array}   dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/batch [post]
func (h *LotHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateLotsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	lots, err := h.uc.CreateLots(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponses(lots))
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.uc.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(lot))
}

// List godoc
// @Summary      Listar lotes
// @Description  Sin include_expired/include_empty devuelve solo lotes utilizables en orden FEFO.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        product_id       query  string  false  "Producto"
// @Param        warehouse_id     query  string  false  "Bodega"
// @Param        include_expired  query  bool    false  "Incluir vencidos"
// @Param        include_empty    query  bool    false  "Incluir agotados"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.LotResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	lots, err := h.uc.ListLots(c.UserContext(), repository.LotFilter{
		ProductID:      c.Query("product_id"),
		WarehouseID:    c.Query("warehouse_id"),
		IncludeExpired: c.QueryBool("include_expired", false),
		IncludeEmpty:   c.QueryBool("include_empty", false),
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponses(lots))
}

// Consume godoc
// @Summary      Salida manual desde un lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del lote"
// @Param        body  body  dto.ConsumeLotRequest  true  "quantity y datos del destino"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/consume [post]
func (h *LotHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeLotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	lot, _, err := h.uc.Consume(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(lot))
}

// Movements godoc
// @Summary      Historial de movimientos de un lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del lote"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.uc.LotMovements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponses(list))
}

// Reconciliation godoc
// @Summary      Conciliar existencia del lote contra el libro
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/reconciliation [get]
func (h *LotHandler) Reconciliation(c *fiber.Ctx) error {
	out, err := h.reports.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        lot_id          query  string  false  "Lote"
// @Param        type            query  string  false  "INTAKE, CONSUMPTION, TRANSFER_OUT, TRANSFER_IN, ADJUSTMENT o EXPIRY"
// @Param        transaction_id  query  string  false  "Transacción"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *LotHandler) ListMovements(c *fiber.Ctx) error {
	in := dto.MovementListRequest{
		LotID:         c.Query("lot_id"),
		Type:          c.Query("type"),
		TransactionID: c.Query("transaction_id"),
		PageRequest:   pageFromQuery(c),
	}
	list, err := h.uc.ListMovements(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementResponses(list))
}
