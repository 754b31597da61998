package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// ExpiryHandler barrido de vencimientos y reportes de existencias (protegido).
type ExpiryHandler struct {
	expiry  *inventory.ExpiryUseCase
	reports *inventory.ReportUseCase
	loc     *time.Location
	now     func() time.Time
}

// NewExpiryHandler construye el handler. loc decide qué fecha es "hoy".
func NewExpiryHandler(expiry *inventory.ExpiryUseCase, reports *inventory.ReportUseCase, loc *time.Location) *ExpiryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpiryHandler{expiry: expiry, reports: reports, loc: loc, now: time.Now}
}

func (h *ExpiryHandler) today() time.Time {
	return entity.DateOnly(h.now().In(h.loc))
}

// Sweep godoc
// @Summary      Ejecutar barrido de vencimientos
// @Description  Marca como vencidos los lotes con fecha anterior a as_of (vacío = hoy). Es idempotente.
// @Tags         expiry
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SweepRequest  false  "Fecha de corte"
// @Success      200   {object}  dto.SweepResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/expiry/sweep [post]
func (h *ExpiryHandler) Sweep(c *fiber.Ctx) error {
	var in dto.SweepRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	asOf := h.today()
	if in.AsOf != "" {
		t, err := dto.ParseDate(in.AsOf)
		if err != nil {
			return respondError(c, err)
		}
		asOf = t
	}
	out, err := h.expiry.Sweep(c.UserContext(), GetUserID(c), asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte de caducidad
// @Description  Lotes con existencia y fecha de vencimiento clasificados en EXPIRED, EXPIRING_SOON u OK.
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        days          query  int     false  "Ventana de alerta en días (0 = configurada)"
// @Param        as_of         query  string  false  "Fecha de corte YYYY-MM-DD"
// @Success      200  {array}   dto.ExpiryReportRow
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/expiry/report [get]
func (h *ExpiryHandler) Report(c *fiber.Ctx) error {
	in := dto.ExpiryReportRequest{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Days:        c.QueryInt("days", 0),
		AsOf:        c.Query("as_of"),
	}
	rows, err := h.expiry.Report(c.UserContext(), in, h.today())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// StockSummary godoc
// @Summary      Resumen de existencias por producto y bodega
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {array}   dto.StockSummaryRow
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock-summary [get]
func (h *ExpiryHandler) StockSummary(c *fiber.Ctx) error {
	in := dto.StockSummaryRequest{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	}
	rows, err := h.reports.StockSummary(c.UserContext(), in, h.today())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}
