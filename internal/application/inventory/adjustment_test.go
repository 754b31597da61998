package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

func (f *fixture) requestAdjustment(t *testing.T, lotID, after string) *entity.AdjustmentRequest {
	t.Helper()
	a, err := f.adjustments.Create(context.Background(), operador, dto.CreateAdjustmentRequest{
		LotID:         lotID,
		QuantityAfter: d(after),
		Reason:        "conteo físico",
	})
	require.NoError(t, err)
	return a
}

// ═══════════════════════════════════════════════════════════════════════════════
// Doble control
// ═══════════════════════════════════════════════════════════════════════════════

func TestAdjustment_AutoaprobacionProhibida(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "10", "2026-10-01", "")
	a := f.requestAdjustment(t, lot.ID, "7")
	requireQty(t, "10", a.QuantityBefore)

	_, err := f.adjustments.Approve(context.Background(), operador, a.ID, dto.ApproveRequest{})
	require.ErrorIs(t, err, domain.ErrSelfApprovalForbidden)

	got, err := f.adjustments.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Empty(t, got.ApprovedBy)
	requireQty(t, "10", f.lot(t, lot.ID).RemainingQuantity)
	assert.Empty(t, f.movementsOfType(t, entity.MovementAdjustment))
}

func TestAdjustment_AprobacionAplicaDeltaActual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.intake(t, "10", "2026-10-01", "")
	a := f.requestAdjustment(t, lot.ID, "7")

	// Entre la solicitud y la aprobación salen 2 unidades: el delta se recalcula.
	_, err := f.allocate(t, "2")
	require.NoError(t, err)

	got, err := f.adjustments.Approve(ctx, admin, a.ID, dto.ApproveRequest{Notes: "revisado"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Equal(t, admin, got.ApprovedBy)
	requireQty(t, "-1", got.AppliedDelta)
	requireQty(t, "7", f.lot(t, lot.ID).RemainingQuantity)

	movs := f.movementsOfType(t, entity.MovementAdjustment)
	require.Len(t, movs, 1)
	requireQty(t, "-1", movs[0].Delta)
	assert.Equal(t, a.ID, movs[0].ReferenceID)
	assert.Equal(t, "conteo físico", movs[0].Notes)
	assert.Equal(t, admin, movs[0].CreatedBy)
	f.requireConserved(t, lot.ID)

	_, err = f.adjustments.Approve(ctx, admin, a.ID, dto.ApproveRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestAdjustment_SubirExistencia(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "3", "2026-10-01", "")
	a := f.requestAdjustment(t, lot.ID, "4.5")

	got, err := f.adjustments.Approve(context.Background(), admin, a.ID, dto.ApproveRequest{})
	require.NoError(t, err)
	requireQty(t, "1.5", got.AppliedDelta)
	requireQty(t, "4.5", f.lot(t, lot.ID).RemainingQuantity)
	f.requireConserved(t, lot.ID)
}

func TestAdjustment_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.intake(t, "3", "2026-10-01", "")

	_, err := f.adjustments.Create(ctx, operador, dto.CreateAdjustmentRequest{LotID: lot.ID, QuantityAfter: d("-1"), Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.adjustments.Create(ctx, operador, dto.CreateAdjustmentRequest{LotID: lot.ID, QuantityAfter: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el motivo es obligatorio")

	_, err = f.adjustments.Create(ctx, "", dto.CreateAdjustmentRequest{LotID: lot.ID, QuantityAfter: d("1"), Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	f.requestAdjustment(t, lot.ID, "2")
	_, err = f.adjustments.Create(ctx, operador, dto.CreateAdjustmentRequest{LotID: lot.ID, QuantityAfter: d("2"), Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestAdjustment_Rechazo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.intake(t, "3", "2026-10-01", "")
	a := f.requestAdjustment(t, lot.ID, "0")

	got, err := f.adjustments.Reject(ctx, admin, a.ID, dto.RejectRequest{Reason: "el conteo estaba mal"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, got.Status)
	assert.Equal(t, admin, got.RejectedBy)
	assert.Equal(t, "el conteo estaba mal", got.RejectionReason)
	requireQty(t, "3", f.lot(t, lot.ID).RemainingQuantity)

	_, err = f.adjustments.Approve(ctx, admin, a.ID, dto.ApproveRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

// Un lote vencido se puede dar de baja con un ajuste a cero.
func TestAdjustment_BajaDeLoteVencido(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "6", "2026-01-01", "2026-03-01")
	_, err := f.expiry.Sweep(context.Background(), admin, day(asOf))
	require.NoError(t, err)

	a := f.requestAdjustment(t, lot.ID, "0")
	_, err = f.adjustments.Approve(context.Background(), admin, a.ID, dto.ApproveRequest{})
	require.NoError(t, err)
	requireQty(t, "0", f.lot(t, lot.ID).RemainingQuantity)
	f.requireConserved(t, lot.ID)
}
