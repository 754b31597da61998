package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/usecase"
)

// WarehouseHandler maneja las peticiones HTTP para bodegas (protegido).
type WarehouseHandler struct {
	uc *usecase.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "Datos de la bodega"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// pageFromQuery lee limit/offset acotados como en el resto de listados.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return dto.PageRequest{Limit: limit, Offset: offset}
}
