package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
)

// AdjustmentHandler solicitudes de ajuste con aprobación de un segundo usuario (protegido).
type AdjustmentHandler struct {
	uc *inventory.AdjustmentUseCase
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *inventory.AdjustmentUseCase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

// Create godoc
// @Summary      Solicitar ajuste de un lote
// @Description  quantity_after es la existencia final deseada; la diferencia se calcula al aprobar.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "lot_id, quantity_after, reason"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	a, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAdjustmentResponse(a))
}

// Approve godoc
// @Summary      Aprobar ajuste
// @Description  Quien aprueba debe ser distinto de quien solicitó.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID de la solicitud"
// @Param        body  body  dto.ApproveRequest  false  "Notas"
// @Success      200   {object}  dto.AdjustmentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/approve [post]
func (h *AdjustmentHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	a, err := h.uc.Approve(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewAdjustmentResponse(a))
}

// Reject godoc
// @Summary      Rechazar ajuste
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la solicitud"
// @Param        body  body  dto.RejectRequest  true  "Motivo"
// @Success      200   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/reject [post]
func (h *AdjustmentHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	a, err := h.uc.Reject(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewAdjustmentResponse(a))
}

// GetByID godoc
// @Summary      Obtener solicitud de ajuste
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id} [get]
func (h *AdjustmentHandler) GetByID(c *fiber.Ctx) error {
	a, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewAdjustmentResponse(a))
}

// List godoc
// @Summary      Listar solicitudes de ajuste
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "PENDING, APPROVED o REJECTED"
// @Param        lot_id        query  string  false  "Lote"
// @Param        warehouse_id  query  string  false  "Bodega del lote"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.AdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), requestListFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AdjustmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.NewAdjustmentResponse(a))
	}
	return c.JSON(out)
}
