package inventory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/infrastructure/memory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

const (
	operador = "u-operador"
	admin    = "u-admin"
	asOf     = "2026-10-16"
)

// fixture almacén en memoria con un producto y dos bodegas, más todos los casos de uso.
type fixture struct {
	store       *memory.Store
	lots        *inventory.LotUseCase
	alloc       *inventory.AllocationUseCase
	transfers   *inventory.TransferUseCase
	adjustments *inventory.AdjustmentUseCase
	expiry      *inventory.ExpiryUseCase
	reports     *inventory.ReportUseCase
	productID   string
	whA, whB    string
}

func newFixture(t *testing.T, opts ...func(*inventory.Options)) *fixture {
	t.Helper()
	o := inventory.DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	store := memory.New()
	f := &fixture{
		store:     store,
		productID: uuid.NewString(),
		whA:       uuid.NewString(),
		whB:       uuid.NewString(),
	}
	store.SeedProduct(&entity.Product{ID: f.productID, Name: "Arroz 1kg", UnitMeasure: "kg"})
	store.SeedWarehouse(&entity.Warehouse{ID: f.whA, Name: "Almacén central", IsActive: true})
	store.SeedWarehouse(&entity.Warehouse{ID: f.whB, Name: "Cocina", IsActive: true})

	log := logger.Nop()
	read := store.Repos()
	f.lots = inventory.NewLotUseCase(store, read, log)
	f.alloc = inventory.NewAllocationUseCase(store, read, log)
	f.transfers = inventory.NewTransferUseCase(store, read, log, o)
	f.adjustments = inventory.NewAdjustmentUseCase(store, read, log)
	f.expiry = inventory.NewExpiryUseCase(store, read, log, o)
	f.reports = inventory.NewReportUseCase(read)
	return f
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// intake registra un lote en la bodega A.
func (f *fixture) intake(t *testing.T, qty, received, expiry string) *entity.Lot {
	t.Helper()
	return f.intakeIn(t, f.whA, qty, received, expiry)
}

func (f *fixture) intakeIn(t *testing.T, warehouseID, qty, received, expiry string) *entity.Lot {
	t.Helper()
	lot, err := f.lots.CreateLot(context.Background(), operador, dto.CreateLotRequest{
		ProductID:    f.productID,
		WarehouseID:  warehouseID,
		Quantity:     d(qty),
		UnitCost:     d("2.50"),
		ReceivedDate: received,
		ExpiryDate:   expiry,
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) lot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	l, err := f.lots.GetLot(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) movements(t *testing.T, lotID string) []*entity.Movement {
	t.Helper()
	list, err := f.store.Repos().Movements.List(context.Background(), repository.MovementFilter{LotID: lotID})
	require.NoError(t, err)
	return list
}

func (f *fixture) movementsOfType(t *testing.T, typ entity.MovementType) []*entity.Movement {
	t.Helper()
	list, err := f.store.Repos().Movements.List(context.Background(), repository.MovementFilter{Type: typ})
	require.NoError(t, err)
	return list
}

// requireConserved verifica remaining == Σ delta para cada lote.
func (f *fixture) requireConserved(t *testing.T, lotIDs ...string) {
	t.Helper()
	for _, id := range lotIDs {
		rec, err := f.reports.Reconcile(context.Background(), id)
		require.NoError(t, err)
		require.Truef(t, rec.Consistent, "lote %s: existencia %s, libro %s", id, rec.RemainingQuantity, rec.LedgerSum)
	}
}

func requireQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "cantidad esperada %s, obtenida %s", want, got)
}
