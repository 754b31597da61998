package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// SystemActor autor de los movimientos que no inicia un usuario (barrido programado).
const SystemActor = "system:expiry-sweeper"

// movementMeta datos comunes a todos los movimientos de una operación atómica.
type movementMeta struct {
	txID       string
	actor      string
	notes      string
	department string
	recipient  string
	reference  string
}

func newMeta(actor string) movementMeta {
	return movementMeta{txID: uuid.New().String(), actor: actor}
}

func (m movementMeta) movement(lotID string, typ entity.MovementType, delta decimal.Decimal, at time.Time) *entity.Movement {
	return &entity.Movement{
		ID:                    uuid.New().String(),
		TransactionID:         m.txID,
		LotID:                 lotID,
		Type:                  typ,
		Delta:                 delta,
		Notes:                 m.notes,
		RequestingDepartment:  m.department,
		RecipientOrganization: m.recipient,
		ReferenceID:           m.reference,
		CreatedBy:             m.actor,
		CreatedAt:             at,
	}
}

// applyDelta es la única vía para cambiar la existencia de un lote ya creado.
// El lote debe venir de GetForUpdate/ListUsableForUpdate dentro de la misma tx.
// Actualiza el lote en memoria para que pasos siguientes de la operación vean el nuevo saldo.
func applyDelta(ctx context.Context, r Repos, lot *entity.Lot, delta decimal.Decimal, typ entity.MovementType, meta movementMeta, at time.Time) (*entity.Movement, error) {
	next := lot.RemainingQuantity.Add(delta)
	if next.IsNegative() {
		return nil, fmt.Errorf("%w: lote %s tiene %s, se requieren %s",
			domain.ErrInsufficientStock, lot.ID, lot.RemainingQuantity, delta.Neg())
	}
	if err := r.Lots.UpdateRemaining(ctx, lot.ID, next, at); err != nil {
		return nil, err
	}
	lot.RemainingQuantity = next
	lot.UpdatedAt = at

	mov := meta.movement(lot.ID, typ, delta, at)
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// openLot persiste un lote nuevo con su movimiento de apertura (delta = existencia inicial),
// de modo que la existencia de todo lote sea siempre la suma de sus movimientos.
func openLot(ctx context.Context, r Repos, lot *entity.Lot, typ entity.MovementType, meta movementMeta) (*entity.Movement, error) {
	if err := r.Lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	mov := meta.movement(lot.ID, typ, lot.RemainingQuantity, lot.CreatedAt)
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func requireActor(actor string) error {
	if actor == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

func requirePositive(q decimal.Decimal) error {
	if !q.IsPositive() {
		return fmt.Errorf("%w: %s debe ser mayor que cero", domain.ErrInvalidQuantity, q)
	}
	return requireStorable("cantidad", q)
}

// Cantidades y costos se guardan como NUMERIC(18, 4).
const storedScale = 4

var storedLimit = decimal.New(1, 14)

// requireStorable rechaza valores que Postgres redondearía o no podría guardar;
// un redondeo por fila rompería la suma de deltas del lote.
func requireStorable(field string, q decimal.Decimal) error {
	if !q.Equal(q.Truncate(storedScale)) {
		return fmt.Errorf("%w: %s %s admite hasta %d decimales", domain.ErrInvalidQuantity, field, q, storedScale)
	}
	if q.Abs().GreaterThanOrEqual(storedLimit) {
		return fmt.Errorf("%w: %s %s fuera de rango", domain.ErrInvalidQuantity, field, q)
	}
	return nil
}

func lockLot(ctx context.Context, r Repos, id string) (*entity.Lot, error) {
	lot, err := r.Lots.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return lot, nil
}

func ensureWarehouse(ctx context.Context, r Repos, id string) (*entity.Warehouse, error) {
	wh, err := r.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.IsActive {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return wh, nil
}

func ensureProduct(ctx context.Context, r Repos, id string) error {
	p, err := r.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
