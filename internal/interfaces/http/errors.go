package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// retryAfterSeconds sugerido al cliente ante un conflicto transitorio.
const retryAfterSeconds = 1

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: se toma la primera coincidencia.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST"},
	{domain.ErrLotExpired, fiber.StatusUnprocessableEntity, "LOT_EXPIRED"},
	{domain.ErrSelfApprovalForbidden, fiber.StatusForbidden, "SELF_APPROVAL_FORBIDDEN"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrTransient, fiber.StatusServiceUnavailable, "TRANSIENT"},
}

// respondError traduce un error de dominio a su respuesta HTTP. Los errores que no son
// de dominio se devuelven tal cual para que los atienda ErrorHandler.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.target == domain.ErrTransient {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return err
}

// ErrorHandler manejador final de Fiber: rutas inexistentes, cuerpos inválidos y errores internos.
// El detalle de los errores internos solo va al log.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "HTTP_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusRequestEntityTooLarge:
				code = "BODY_TOO_LARGE"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", GetUserID(c)).
			Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func invalidQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
}
