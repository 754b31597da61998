package repository

import (
	"context"
	"time"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// MovementFilter filtros para el historial de movimientos.
type MovementFilter struct {
	LotID         string
	Type          entity.MovementType
	TransactionID string
	From, To      *time.Time
	Limit         int
	Offset        int
}

// MovementRepository puerto del libro de movimientos (solo inserción, nunca se actualiza ni borra).
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, error)
}
