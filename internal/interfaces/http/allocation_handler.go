package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
)

// AllocationHandler consumo FEFO (protegido).
type AllocationHandler struct {
	uc *inventory.AllocationUseCase
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(uc *inventory.AllocationUseCase) *AllocationHandler {
	return &AllocationHandler{uc: uc}
}

// Allocate godoc
// @Summary      Consumir un producto en orden FEFO
// @Description  Descuenta primero de los lotes que vencen antes. Si no alcanza no se toca ningún lote.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocations [post]
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Allocate(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AllocateBatch godoc
// @Summary      Surtir un pedido con varios productos
// @Description  El pedido se surte completo o no se surte.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateManyRequest  true  "Líneas del pedido"
// @Success      201   {array}   dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/allocations/batch [post]
func (h *AllocationHandler) AllocateBatch(c *fiber.Ctx) error {
	var in dto.AllocateManyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AllocateMany(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Preview godoc
// @Summary      Vista previa del consumo FEFO
// @Description  No modifica nada. Sin quantity lista los lotes utilizables en orden de consumo.
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "Producto"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        quantity      query  string  false  "Cantidad a consumir"
// @Success      200  {object}  dto.PreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/allocations/preview [get]
func (h *AllocationHandler) Preview(c *fiber.Ctx) error {
	var qty *decimal.Decimal
	if raw := c.Query("quantity"); raw != "" {
		q, err := decimal.NewFromString(raw)
		if err != nil {
			return invalidQuery(c)
		}
		qty = &q
	}
	out, err := h.uc.Preview(c.UserContext(), c.Query("product_id"), c.Query("warehouse_id"), qty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
