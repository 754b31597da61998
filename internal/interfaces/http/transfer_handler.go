package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
)

// TransferHandler solicitudes de traslado entre bodegas (protegido).
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Solicitar traslado de un lote
// @Description  Queda PENDING hasta que un administrador la apruebe. No mueve existencias.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "lot_id, to_warehouse_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.uc.Request(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferResponse(t))
}

// Approve godoc
// @Summary      Aprobar traslado
// @Description  Descuenta el lote origen y acredita la bodega destino en una sola transacción.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID de la solicitud"
// @Param        body  body  dto.ApproveRequest  false  "Notas"
// @Success      200   {object}  dto.TransferResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	t, err := h.uc.Approve(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransferResponse(t))
}

// Reject godoc
// @Summary      Rechazar traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la solicitud"
// @Param        body  body  dto.RejectRequest  true  "Motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.uc.Reject(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransferResponse(t))
}

// GetByID godoc
// @Summary      Obtener solicitud de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransferResponse(t))
}

// List godoc
// @Summary      Listar solicitudes de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "PENDING, APPROVED o REJECTED"
// @Param        lot_id        query  string  false  "Lote"
// @Param        warehouse_id  query  string  false  "Bodega origen o destino"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), requestListFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.NewTransferResponse(t))
	}
	return c.JSON(out)
}

func requestListFromQuery(c *fiber.Ctx) dto.RequestListRequest {
	return dto.RequestListRequest{
		Status:      c.Query("status"),
		LotID:       c.Query("lot_id"),
		WarehouseID: c.Query("warehouse_id"),
		PageRequest: pageFromQuery(c),
	}
}
