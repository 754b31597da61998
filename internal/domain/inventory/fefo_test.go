package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/inventory"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func lot(id string, qty int64, received string, expiry *time.Time) *entity.Lot {
	return &entity.Lot{
		ID:                id,
		RemainingQuantity: decimal.NewFromInt(qty),
		ReceivedDate:      day(received),
		ExpiryDate:        expiry,
		CreatedAt:         day(received),
	}
}

func ids(plan []inventory.Allocation) []string {
	out := make([]string, 0, len(plan))
	for _, a := range plan {
		out = append(out, a.Lot.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden FEFO
// ──────────────────────────────────────────────────────────────────────────────

func TestSortFEFO_VencimientoPrimeroSinFechaAlFinal(t *testing.T) {
	lots := []*entity.Lot{
		lot("sin-fecha", 5, "2026-01-01", nil),
		lot("junio", 5, "2026-01-01", dayPtr("2026-06-30")),
		lot("marzo", 5, "2026-02-01", dayPtr("2026-03-31")),
	}
	inventory.SortFEFO(lots)

	got := []string{lots[0].ID, lots[1].ID, lots[2].ID}
	assert.Equal(t, []string{"marzo", "junio", "sin-fecha"}, got)
}

func TestSortFEFO_EmpateSeResuelvePorRecepcion(t *testing.T) {
	lots := []*entity.Lot{
		lot("tarde", 5, "2026-02-10", dayPtr("2026-05-01")),
		lot("temprano", 5, "2026-01-10", dayPtr("2026-05-01")),
	}
	inventory.SortFEFO(lots)
	assert.Equal(t, "temprano", lots[0].ID)
}

func TestSortFEFO_EmpateTotalEsDeterministaPorID(t *testing.T) {
	a := lot("b", 1, "2026-01-10", nil)
	b := lot("a", 1, "2026-01-10", nil)
	lots := []*entity.Lot{a, b}
	inventory.SortFEFO(lots)
	assert.Equal(t, "a", lots[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// PlanFEFO
// ──────────────────────────────────────────────────────────────────────────────

// Tres lotes 3/5/4 con vencimientos en orden, pedir 6 → toma 3 del primero y 3 del segundo.
func TestPlanFEFO_ReparteEntreLotes(t *testing.T) {
	lots := []*entity.Lot{
		lot("l3", 4, "2026-01-01", dayPtr("2026-03-03")),
		lot("l1", 3, "2026-01-01", dayPtr("2026-03-01")),
		lot("l2", 5, "2026-01-01", dayPtr("2026-03-02")),
	}
	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(6))
	require.NoError(t, err)

	assert.Equal(t, []string{"l1", "l2"}, ids(plan))
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, lots[1].RemainingQuantity.Equal(decimal.NewFromInt(3)), "el plan no debe modificar los lotes")
}

func TestPlanFEFO_IgnoraVencidosYVacios(t *testing.T) {
	vencido := lot("vencido", 10, "2025-01-01", dayPtr("2025-02-01"))
	vencido.Expired = true
	lots := []*entity.Lot{
		vencido,
		lot("vacio", 0, "2025-01-01", dayPtr("2025-03-01")),
		lot("bueno", 4, "2025-06-01", nil),
	}
	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"bueno"}, ids(plan))
}

func TestPlanFEFO_StockInsuficiente(t *testing.T) {
	lots := []*entity.Lot{lot("a", 2, "2026-01-01", nil), lot("b", 3, "2026-01-01", nil)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(6))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, plan)
}

func TestPlanFEFO_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.PlanFEFO(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.PlanFEFO(nil, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPlanFEFO_CantidadesDecimales(t *testing.T) {
	lots := []*entity.Lot{
		lot("a", 0, "2026-01-01", dayPtr("2026-02-01")),
		lot("b", 0, "2026-01-01", dayPtr("2026-03-01")),
	}
	lots[0].RemainingQuantity = decimal.RequireFromString("1.25")
	lots[1].RemainingQuantity = decimal.RequireFromString("2.5")

	plan, err := inventory.PlanFEFO(lots, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "1.25", plan[0].Quantity.String())
	assert.Equal(t, "0.25", plan[1].Quantity.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo y vencimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestWeightedAverageCost(t *testing.T) {
	a := lot("a", 10, "2026-01-01", nil)
	a.UnitCost = decimal.NewFromInt(2)
	b := lot("b", 30, "2026-01-01", nil)
	b.UnitCost = decimal.NewFromInt(4)
	vencido := lot("c", 100, "2026-01-01", nil)
	vencido.UnitCost = decimal.NewFromInt(100)
	vencido.Expired = true

	got := inventory.WeightedAverageCost([]*entity.Lot{a, b, vencido})
	assert.Equal(t, "3.5", got.String())
}

func TestClassifyExpiry(t *testing.T) {
	today := day("2026-10-16")

	cases := []struct {
		name   string
		expiry *time.Time
		want   inventory.ExpiryStatus
		days   int
	}{
		{"vencido ayer", dayPtr("2026-10-15"), inventory.ExpiryExpired, -1},
		{"vence hoy", dayPtr("2026-10-16"), inventory.ExpiryExpiringSoon, 0},
		{"borde de la ventana", dayPtr("2026-11-15"), inventory.ExpiryExpiringSoon, 30},
		{"fuera de la ventana", dayPtr("2026-11-16"), inventory.ExpiryOK, 31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, days, ok := inventory.ClassifyExpiry(lot("x", 1, "2026-01-01", tc.expiry), today, 30)
			assert.True(t, ok)
			assert.Equal(t, tc.want, status)
			assert.Equal(t, tc.days, days)
		})
	}

	_, _, ok := inventory.ClassifyExpiry(lot("x", 1, "2026-01-01", nil), today, 30)
	assert.False(t, ok, "sin fecha de vencimiento no se clasifica")
}
