package inventory

import (
	"context"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

// Repos repositorios atados a una misma conexión o transacción.
type Repos struct {
	Lots        repository.LotRepository
	Movements   repository.MovementRepository
	Transfers   repository.TransferRepository
	Adjustments repository.AdjustmentRepository
	Warehouses  repository.WarehouseRepository
	Products    repository.ProductRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y nada de lo escrito persiste.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// Options reglas configurables del libro.
type Options struct {
	TransferRequiresDistinctApprover bool
	ExpiringSoonDays                 int
}

// DefaultOptions valores por defecto (ventana de alerta de 30 días).
func DefaultOptions() Options {
	return Options{ExpiringSoonDays: 30}
}
