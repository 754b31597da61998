package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// LotFilter filtros para listar lotes. Campos vacíos no filtran.
type LotFilter struct {
	ProductID      string
	WarehouseID    string
	IncludeExpired bool
	IncludeEmpty   bool
	WithExpiryOnly bool // solo lotes con fecha de vencimiento
	Limit          int
	Offset         int
}

// LotMergeKey identifica un lote destino compatible para fusionar un traslado.
type LotMergeKey struct {
	ProductID    string
	WarehouseID  string
	ReceivedDate time.Time
	ExpiryDate   *time.Time
	UnitCost     decimal.Decimal
}

// LotRepository puerto de persistencia para lotes.
// Los métodos ...ForUpdate bloquean las filas hasta el fin de la transacción.
// GetByID y GetForUpdate devuelven nil, nil si el lote no existe.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	// GetWithLedgerSum lee el lote y la suma de sus deltas en una sola lectura consistente.
	GetWithLedgerSum(ctx context.Context, id string) (*entity.Lot, decimal.Decimal, error)
	// ListUsableForUpdate bloquea y devuelve los lotes no vencidos con existencia, en orden FEFO.
	ListUsableForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.Lot, error)
	List(ctx context.Context, f LotFilter) ([]*entity.Lot, error)
	UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal, at time.Time) error
	// FindMergeTargetForUpdate devuelve un lote no vencido que coincide con la llave, o nil.
	FindMergeTargetForUpdate(ctx context.Context, key LotMergeKey) (*entity.Lot, error)
	// ListExpirableForUpdate bloquea los lotes no marcados cuyo vencimiento es anterior a asOf.
	ListExpirableForUpdate(ctx context.Context, asOf time.Time) ([]*entity.Lot, error)
	MarkExpired(ctx context.Context, id string, at time.Time) error
}
