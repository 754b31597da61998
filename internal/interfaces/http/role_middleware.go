package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
)

// RequireRole autoriza la petición si el rol del token está entre los permitidos.
// Debe usarse DESPUÉS de AuthMiddleware.
//
//   - 401 MISSING_ROLE → el token no trae rol.
//   - 403 FORBIDDEN    → el rol no está permitido en la ruta.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + role + "' no tiene acceso a este recurso",
			})
		}
		return c.Next()
	}
}
