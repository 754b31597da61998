package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// RequestFilter filtros comunes para solicitudes de traslado y ajuste.
type RequestFilter struct {
	Status      entity.RequestStatus
	LotID       string
	WarehouseID string
	Limit       int
	Offset      int
}

// TransferRepository puerto de persistencia para solicitudes de traslado.
// GetByID y GetForUpdate devuelven nil, nil si no existe.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.TransferRequest) error
	GetByID(ctx context.Context, id string) (*entity.TransferRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error)
	Update(ctx context.Context, t *entity.TransferRequest) error
	FindPendingDuplicate(ctx context.Context, lotID, requestedBy, toWarehouseID string, qty decimal.Decimal) (*entity.TransferRequest, error)
	List(ctx context.Context, f RequestFilter) ([]*entity.TransferRequest, error)
}

// AdjustmentRepository puerto de persistencia para solicitudes de ajuste.
type AdjustmentRepository interface {
	Create(ctx context.Context, a *entity.AdjustmentRequest) error
	GetByID(ctx context.Context, id string) (*entity.AdjustmentRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.AdjustmentRequest, error)
	Update(ctx context.Context, a *entity.AdjustmentRequest) error
	FindPendingDuplicate(ctx context.Context, lotID, createdBy string, quantityAfter decimal.Decimal) (*entity.AdjustmentRequest, error)
	List(ctx context.Context, f RequestFilter) ([]*entity.AdjustmentRequest, error)
}
