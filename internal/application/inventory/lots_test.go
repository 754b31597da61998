package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

func TestCreateLot_EscribeMovimientoIntake(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "12.5", "2026-10-01", "2027-01-31")

	requireQty(t, "12.5", lot.ReceivedQuantity)
	requireQty(t, "12.5", lot.RemainingQuantity)
	assert.Equal(t, "2026-10-01", lot.ReceivedDate.Format(dto.DateLayout))
	require.NotNil(t, lot.ExpiryDate)
	assert.False(t, lot.Expired)

	movs := f.movements(t, lot.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementIntake, movs[0].Type)
	requireQty(t, "12.5", movs[0].Delta)
	assert.Equal(t, operador, movs[0].CreatedBy)
	f.requireConserved(t, lot.ID)
}

func TestCreateLot_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := dto.CreateLotRequest{ProductID: f.productID, WarehouseID: f.whA, Quantity: d("1"), UnitCost: d("0")}

	cases := []struct {
		name string
		mut  func(r *dto.CreateLotRequest)
		want error
	}{
		{"cantidad cero", func(r *dto.CreateLotRequest) { r.Quantity = d("0") }, domain.ErrInvalidQuantity},
		{"cantidad negativa", func(r *dto.CreateLotRequest) { r.Quantity = d("-3") }, domain.ErrInvalidQuantity},
		{"costo negativo", func(r *dto.CreateLotRequest) { r.UnitCost = d("-1") }, domain.ErrInvalidInput},
		{"fecha mal formada", func(r *dto.CreateLotRequest) { r.ExpiryDate = "31/12/2026" }, domain.ErrInvalidInput},
		{"producto inexistente", func(r *dto.CreateLotRequest) { r.ProductID = uuid.NewString() }, domain.ErrNotFound},
		{"bodega inexistente", func(r *dto.CreateLotRequest) { r.WarehouseID = uuid.NewString() }, domain.ErrNotFound},
		{"sin producto", func(r *dto.CreateLotRequest) { r.ProductID = "" }, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mut(&in)
			_, err := f.lots.CreateLot(ctx, operador, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	lots, err := f.lots.ListLots(ctx, repository.LotFilter{IncludeExpired: true, IncludeEmpty: true})
	require.NoError(t, err)
	assert.Empty(t, lots, "ningún intento inválido debe dejar lotes")
}

func TestCreateLot_SinActorNoAutorizado(t *testing.T) {
	f := newFixture(t)
	_, err := f.lots.CreateLot(context.Background(), "", dto.CreateLotRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// Una donación con una línea inválida no debe dejar ningún lote registrado.
func TestCreateLots_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lots.CreateLots(ctx, operador, dto.CreateLotsRequest{
		WarehouseID: f.whA,
		ReferenceID: "donacion-77",
		Items: []dto.CreateLotItem{
			{ProductID: f.productID, Quantity: d("10"), UnitCost: d("1")},
			{ProductID: uuid.NewString(), Quantity: d("5"), UnitCost: d("1")},
		},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	lots, err := f.lots.ListLots(ctx, repository.LotFilter{IncludeExpired: true, IncludeEmpty: true})
	require.NoError(t, err)
	assert.Empty(t, lots)
	assert.Empty(t, f.movementsOfType(t, entity.MovementIntake))

	created, err := f.lots.CreateLots(ctx, operador, dto.CreateLotsRequest{
		WarehouseID: f.whA,
		ReferenceID: "donacion-78",
		Items: []dto.CreateLotItem{
			{ProductID: f.productID, Quantity: d("10"), UnitCost: d("1"), ExpiryDate: "2027-01-01"},
			{ProductID: f.productID, Quantity: d("4"), UnitCost: d("1")},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	intakes := f.movementsOfType(t, entity.MovementIntake)
	require.Len(t, intakes, 2)
	assert.Equal(t, intakes[0].TransactionID, intakes[1].TransactionID, "ambos ingresos pertenecen a la misma operación")
	assert.Equal(t, "donacion-78", intakes[0].ReferenceID)
}

func TestConsume_DescuentaDelLoteElegido(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "10", "2026-10-01", "2027-01-31")

	got, mov, err := f.lots.Consume(context.Background(), operador, lot.ID, dto.ConsumeLotRequest{
		Quantity:              d("4"),
		RequestingDepartment:  "Cocina",
		RecipientOrganization: "Comedor San José",
	})
	require.NoError(t, err)
	requireQty(t, "6", got.RemainingQuantity)
	assert.Equal(t, entity.MovementConsumption, mov.Type)
	requireQty(t, "-4", mov.Delta)
	assert.Equal(t, "Comedor San José", mov.RecipientOrganization)

	_, _, err = f.lots.Consume(context.Background(), operador, lot.ID, dto.ConsumeLotRequest{Quantity: d("7")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	requireQty(t, "6", f.lot(t, lot.ID).RemainingQuantity)
	f.requireConserved(t, lot.ID)
}

func TestConsume_LoteVencidoRechazado(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "10", "2026-01-01", "2026-02-01")
	_, err := f.expiry.Sweep(context.Background(), admin, day(asOf))
	require.NoError(t, err)

	_, _, err = f.lots.Consume(context.Background(), operador, lot.ID, dto.ConsumeLotRequest{Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrLotExpired)
}

func TestAdjustRemaining_SoloConsumo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.intake(t, "5", "2026-10-01", "")

	_, err := f.lots.AdjustRemaining(ctx, admin, lot.ID, d("-6"), entity.MovementConsumption, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "la existencia nunca puede quedar negativa")

	_, err = f.lots.AdjustRemaining(ctx, admin, lot.ID, d("1"), entity.MovementConsumption, "")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Las correcciones sin doble control no pasan por aquí.
	_, err = f.lots.AdjustRemaining(ctx, admin, lot.ID, d("2"), entity.MovementAdjustment, "sobrante")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.lots.AdjustRemaining(ctx, admin, lot.ID, d("-1"), entity.MovementAdjustment, "conteo")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.lots.AdjustRemaining(ctx, admin, lot.ID, d("1"), entity.MovementIntake, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.lots.AdjustRemaining(ctx, admin, lot.ID, d("-2"), entity.MovementConsumption, "merma")
	require.NoError(t, err)
	requireQty(t, "3", got.RemainingQuantity)

	_, err = f.lots.AdjustRemaining(ctx, admin, uuid.NewString(), d("-1"), entity.MovementConsumption, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.requireConserved(t, lot.ID)
}

// Postgres guarda NUMERIC(18, 4): valores con más decimales o fuera de rango se rechazan
// antes de tocar el libro.
func TestCantidades_EscalaAlmacenable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lots.CreateLot(ctx, operador, dto.CreateLotRequest{
		ProductID: f.productID, WarehouseID: f.whA, Quantity: d("1.00005"), ReceivedDate: "2026-10-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.lots.CreateLot(ctx, operador, dto.CreateLotRequest{
		ProductID: f.productID, WarehouseID: f.whA, Quantity: d("100000000000000"), ReceivedDate: "2026-10-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.lots.CreateLot(ctx, operador, dto.CreateLotRequest{
		ProductID: f.productID, WarehouseID: f.whA, Quantity: d("1"), UnitCost: d("0.12345"), ReceivedDate: "2026-10-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Ceros a la derecha no cambian el valor guardado.
	lot := f.intake(t, "1.00010", "2026-10-01", "")
	requireQty(t, "1.0001", lot.RemainingQuantity)

	_, err = f.alloc.Allocate(ctx, operador, dto.AllocateRequest{
		ProductID: f.productID, WarehouseID: f.whA, Quantity: d("0.000049"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, _, err = f.lots.Consume(ctx, operador, lot.ID, dto.ConsumeLotRequest{Quantity: d("0.00001")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.adjustments.Create(ctx, operador, dto.CreateAdjustmentRequest{
		LotID: lot.ID, QuantityAfter: d("0.99999"), Reason: "conteo",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	requireQty(t, "1.0001", f.lot(t, lot.ID).RemainingQuantity)
	f.requireConserved(t, lot.ID)
}

// Una falla al escribir el movimiento deshace el cambio de existencia.
func TestConsume_FallaEnLibroNoDejaCambios(t *testing.T) {
	f := newFixture(t)
	lot := f.intake(t, "10", "2026-10-01", "")
	boom := errors.New("disco lleno")
	f.store.SetFault(func(op string) error {
		if op == "movements.create:CONSUMPTION" {
			return boom
		}
		return nil
	})

	_, _, err := f.lots.Consume(context.Background(), operador, lot.ID, dto.ConsumeLotRequest{Quantity: d("3")})
	require.ErrorIs(t, err, boom)
	requireQty(t, "10", f.lot(t, lot.ID).RemainingQuantity)
	f.requireConserved(t, lot.ID)
}

func TestLotMovements_LoteInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.lots.LotMovements(context.Background(), uuid.NewString(), 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
