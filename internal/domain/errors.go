package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("la solicitud ya fue resuelta")
	ErrSelfApprovalForbidden  = errors.New("quien aprueba debe ser distinto de quien solicitó")
	ErrDuplicateRequest       = errors.New("ya existe una solicitud pendiente idéntica")
	ErrLotExpired             = errors.New("el lote está vencido")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")

	// ErrTransient agrupa timeouts de bloqueo, deadlocks y fallas de serialización.
	// La operación no se aplicó y puede reintentarse.
	ErrTransient = errors.New("conflicto de concurrencia, reintente la operación")
)
