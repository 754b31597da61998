package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// RequestLogger registra cada petición con su estado y latencia.
// Los errores de la cadena se resuelven aquí con el ErrorHandler de la app para loguear el estado final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Str("user_id", GetUserID(c)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("petición HTTP")
		return nil
	}
}
