package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

func TestSweep_MarcaVencidosSinTocarExistencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vencido := f.intake(t, "5", "2026-01-01", "2026-10-15")
	venceHoy := f.intake(t, "5", "2026-01-01", asOf)
	sinFecha := f.intake(t, "5", "2026-01-01", "")
	vacio := f.intake(t, "2", "2026-01-01", "2026-09-01")
	_, _, err := f.lots.Consume(ctx, operador, vacio.ID, dto.ConsumeLotRequest{Quantity: d("2")})
	require.NoError(t, err)

	res, err := f.expiry.Sweep(ctx, "", day(asOf))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Flagged)
	assert.ElementsMatch(t, []string{vencido.ID, vacio.ID}, res.LotIDs)
	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, asOf, res.AsOf)

	assert.True(t, f.lot(t, vencido.ID).Expired)
	assert.True(t, f.lot(t, vacio.ID).Expired)
	assert.False(t, f.lot(t, venceHoy.ID).Expired, "vence hoy: todavía utilizable")
	assert.False(t, f.lot(t, sinFecha.ID).Expired)
	requireQty(t, "5", f.lot(t, vencido.ID).RemainingQuantity)

	movs := f.movementsOfType(t, entity.MovementExpiry)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.True(t, m.Delta.IsZero())
		assert.Equal(t, inventory.SystemActor, m.CreatedBy)
	}
	f.requireConserved(t, vencido.ID, vacio.ID)
}

func TestSweep_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.intake(t, "5", "2026-01-01", "2026-10-01")

	first, err := f.expiry.Sweep(ctx, admin, day(asOf))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Flagged)

	second, err := f.expiry.Sweep(ctx, admin, day(asOf))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Flagged)
	assert.Empty(t, second.LotIDs)
	assert.Empty(t, second.TransactionID)
	assert.Len(t, f.movementsOfType(t, entity.MovementExpiry), 1)
}

func TestSweep_FallaNoMarcaNada(t *testing.T) {
	f := newFixture(t)
	a := f.intake(t, "5", "2026-01-01", "2026-10-01")
	b := f.intake(t, "5", "2026-01-01", "2026-10-02")
	calls := 0
	f.store.SetFault(func(op string) error {
		if op == "lots.expire" {
			calls++
			if calls == 2 {
				return context.DeadlineExceeded
			}
		}
		return nil
	})

	_, err := f.expiry.Sweep(context.Background(), admin, day(asOf))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.lot(t, a.ID).Expired)
	assert.False(t, f.lot(t, b.ID).Expired)
}

func TestExpiryReport_Clasificacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ok := f.intake(t, "1", "2026-01-01", "2027-03-01")
	pronto := f.intake(t, "1", "2026-01-01", "2026-10-30")
	vencido := f.intake(t, "1", "2026-01-01", "2026-10-10")
	f.intake(t, "1", "2026-01-01", "")

	rows, err := f.expiry.Report(ctx, dto.ExpiryReportRequest{AsOf: asOf}, day("2000-01-01"))
	require.NoError(t, err)
	require.Len(t, rows, 3, "los lotes sin fecha no aparecen")

	assert.Equal(t, vencido.ID, rows[0].LotID)
	assert.Equal(t, "EXPIRED", rows[0].Status)
	assert.Equal(t, -6, rows[0].DaysToExpiry)
	assert.False(t, rows[0].IsExpired, "el barrido aún no lo marcó")

	assert.Equal(t, pronto.ID, rows[1].LotID)
	assert.Equal(t, "EXPIRING_SOON", rows[1].Status)
	assert.Equal(t, 14, rows[1].DaysToExpiry)

	assert.Equal(t, ok.ID, rows[2].LotID)
	assert.Equal(t, "OK", rows[2].Status)

	// Con ventana de 7 días el lote a 14 días ya no está próximo.
	rows, err = f.expiry.Report(ctx, dto.ExpiryReportRequest{Days: 7}, day(asOf))
	require.NoError(t, err)
	assert.Equal(t, "OK", rows[1].Status)
}

// La simulación lista los mismos lotes que marcará el barrido, incluidos los agotados.
func TestPending_CoincideConSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vencido := f.intake(t, "5", "2026-01-01", "2026-10-15")
	f.intake(t, "5", "2026-01-01", asOf)
	vacio := f.intake(t, "2", "2026-01-01", "2026-09-01")
	_, _, err := f.lots.Consume(ctx, operador, vacio.ID, dto.ConsumeLotRequest{Quantity: d("2")})
	require.NoError(t, err)

	pending, err := f.expiry.Pending(ctx, day(asOf))
	require.NoError(t, err)
	ids := make([]string, 0, len(pending))
	for _, l := range pending {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []string{vencido.ID, vacio.ID}, ids)
	assert.False(t, f.lot(t, vencido.ID).Expired, "la simulación no marca nada")

	res, err := f.expiry.Sweep(ctx, "", day(asOf))
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, res.LotIDs)

	pending, err = f.expiry.Pending(ctx, day(asOf))
	require.NoError(t, err)
	assert.Empty(t, pending)
}
