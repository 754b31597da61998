package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

func day(s string) time.Time {
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fixture) allocate(t *testing.T, qty string) (*dto.AllocationResponse, error) {
	t.Helper()
	return f.alloc.Allocate(context.Background(), operador, dto.AllocateRequest{
		ProductID:   f.productID,
		WarehouseID: f.whA,
		Quantity:    d(qty),
	})
}

// Lotes 3/5/4 con vencimientos crecientes; pedir 6 deja 0/2/4.
func TestAllocate_FEFOEntreVariosLotes(t *testing.T) {
	f := newFixture(t)
	l1 := f.intake(t, "3", "2026-09-01", "2026-11-01")
	l3 := f.intake(t, "4", "2026-09-01", "2026-11-03")
	l2 := f.intake(t, "5", "2026-09-01", "2026-11-02")

	res, err := f.allocate(t, "6")
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, l1.ID, res.Lines[0].LotID)
	requireQty(t, "3", res.Lines[0].Quantity)
	assert.Equal(t, l2.ID, res.Lines[1].LotID)
	requireQty(t, "3", res.Lines[1].Quantity)
	assert.NotEmpty(t, res.TransactionID)

	requireQty(t, "0", f.lot(t, l1.ID).RemainingQuantity)
	requireQty(t, "2", f.lot(t, l2.ID).RemainingQuantity)
	requireQty(t, "4", f.lot(t, l3.ID).RemainingQuantity)

	consumption := f.movementsOfType(t, entity.MovementConsumption)
	require.Len(t, consumption, 2)
	assert.Equal(t, consumption[0].TransactionID, consumption[1].TransactionID)
	f.requireConserved(t, l1.ID, l2.ID, l3.ID)
}

func TestAllocate_SinVencimientoSeConsumeAlFinal(t *testing.T) {
	f := newFixture(t)
	sinFecha := f.intake(t, "5", "2026-01-01", "")
	conFecha := f.intake(t, "5", "2026-10-01", "2027-06-01")

	res, err := f.allocate(t, "6")
	require.NoError(t, err)
	assert.Equal(t, conFecha.ID, res.Lines[0].LotID)
	assert.Equal(t, sinFecha.ID, res.Lines[1].LotID)
	requireQty(t, "1", res.Lines[1].Quantity)
}

func TestAllocate_StockInsuficienteNoDescuentaNada(t *testing.T) {
	f := newFixture(t)
	a := f.intake(t, "2", "2026-09-01", "2026-12-01")
	b := f.intake(t, "3", "2026-09-01", "2026-12-02")

	_, err := f.allocate(t, "6")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	requireQty(t, "2", f.lot(t, a.ID).RemainingQuantity)
	requireQty(t, "3", f.lot(t, b.ID).RemainingQuantity)
	assert.Empty(t, f.movementsOfType(t, entity.MovementConsumption))
}

func TestAllocate_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.allocate(t, "0")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAllocate_IgnoraLotesVencidos(t *testing.T) {
	f := newFixture(t)
	f.intake(t, "10", "2026-01-01", "2026-03-01")
	bueno := f.intake(t, "4", "2026-09-01", "2027-03-01")
	_, err := f.expiry.Sweep(context.Background(), admin, day(asOf))
	require.NoError(t, err)

	_, err = f.allocate(t, "5")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	res, err := f.allocate(t, "4")
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, bueno.ID, res.Lines[0].LotID)
}

// Pedido de dos líneas: si la segunda no alcanza, la primera tampoco se aplica.
func TestAllocateMany_TodoONada(t *testing.T) {
	f := newFixture(t)
	enA := f.intakeIn(t, f.whA, "10", "2026-09-01", "")
	enB := f.intakeIn(t, f.whB, "1", "2026-09-01", "")

	_, err := f.alloc.AllocateMany(context.Background(), operador, dto.AllocateManyRequest{
		Lines: []dto.AllocateLine{
			{ProductID: f.productID, WarehouseID: f.whA, Quantity: d("4")},
			{ProductID: f.productID, WarehouseID: f.whB, Quantity: d("2")},
		},
		RequestingDepartment: "Cocina",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	requireQty(t, "10", f.lot(t, enA.ID).RemainingQuantity)
	requireQty(t, "1", f.lot(t, enB.ID).RemainingQuantity)
}

func TestAllocateMany_LineasRepetidasVenElSaldoActualizado(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "5", "2026-09-01", "")

	res, err := f.alloc.AllocateMany(context.Background(), operador, dto.AllocateManyRequest{
		Lines: []dto.AllocateLine{
			{ProductID: f.productID, WarehouseID: f.whA, Quantity: d("3")},
			{ProductID: f.productID, WarehouseID: f.whA, Quantity: d("2")},
		},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	requireQty(t, "0", res[1].Lines[0].RemainingAfter)
	requireQty(t, "0", f.lot(t, lot.ID).RemainingQuantity)

	_, err = f.alloc.AllocateMany(context.Background(), operador, dto.AllocateManyRequest{
		Lines: []dto.AllocateLine{{ProductID: f.productID, WarehouseID: f.whA, Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Una falla a mitad del consumo (segundo lote) deshace también el primero.
func TestAllocate_FallaEnSegundoLoteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	a := f.intake(t, "2", "2026-09-01", "2026-12-01")
	b := f.intake(t, "5", "2026-09-01", "2026-12-02")
	boom := errors.New("falla inyectada")
	calls := 0
	f.store.SetFault(func(op string) error {
		if op == "lots.update" {
			calls++
			if calls == 2 {
				return boom
			}
		}
		return nil
	})

	_, err := f.allocate(t, "4")
	require.ErrorIs(t, err, boom)
	requireQty(t, "2", f.lot(t, a.ID).RemainingQuantity)
	requireQty(t, "5", f.lot(t, b.ID).RemainingQuantity)
	f.requireConserved(t, a.ID, b.ID)
}

// Consumos concurrentes nunca sobregiran: de 10 unidades, 20 pedidos de 1 → 10 éxitos.
func TestAllocate_ConcurrenteConservaCantidad(t *testing.T) {
	f := newFixture(t)
	a := f.intake(t, "4", "2026-09-01", "2026-12-01")
	b := f.intake(t, "6", "2026-09-01", "2026-12-05")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.allocate(t, "1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				fail++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, fail)
	requireQty(t, "0", f.lot(t, a.ID).RemainingQuantity)
	requireQty(t, "0", f.lot(t, b.ID).RemainingQuantity)
	f.requireConserved(t, a.ID, b.ID)
}

func TestPreview_NoModificaNada(t *testing.T) {
	f := newFixture(t)
	a := f.intake(t, "3", "2026-09-01", "2026-11-01")
	f.intake(t, "5", "2026-09-01", "2026-11-02")
	ctx := context.Background()

	qty := d("4")
	p, err := f.alloc.Preview(ctx, f.productID, f.whA, &qty)
	require.NoError(t, err)
	requireQty(t, "8", p.Available)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, a.ID, p.Lines[0].LotID)
	requireQty(t, "0", p.Lines[0].RemainingAfter)
	requireQty(t, "3", f.lot(t, a.ID).RemainingQuantity)

	all, err := f.alloc.Preview(ctx, f.productID, f.whA, nil)
	require.NoError(t, err)
	assert.Len(t, all.Lines, 2)

	big := d("9")
	_, err = f.alloc.Preview(ctx, f.productID, f.whA, &big)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
