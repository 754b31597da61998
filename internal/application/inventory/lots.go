package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// LotUseCase ingreso de lotes, salidas manuales por lote y consultas del libro.
type LotUseCase struct {
	txRunner TxRunner
	read     Repos
	log      *logger.Logger
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(txRunner TxRunner, read Repos, log *logger.Logger) *LotUseCase {
	return &LotUseCase{txRunner: txRunner, read: read, log: log.Component("lots")}
}

// intakeLine línea de ingreso ya validada.
type intakeLine struct {
	productID string
	quantity  decimal.Decimal
	unitCost  decimal.Decimal
	received  *time.Time // nil = hoy
	expiry    *time.Time
}

func parseIntakeLine(productID string, qty, unitCost decimal.Decimal, received, expiry string) (*intakeLine, error) {
	if err := requirePositive(qty); err != nil {
		return nil, err
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	if err := requireStorable("unit_cost", unitCost); err != nil {
		return nil, err
	}
	line := &intakeLine{productID: productID, quantity: qty, unitCost: unitCost}
	var err error
	if line.received, err = dto.ParseOptionalDate(received); err != nil {
		return nil, err
	}
	if line.expiry, err = dto.ParseOptionalDate(expiry); err != nil {
		return nil, err
	}
	return line, nil
}

// intake crea el lote con su movimiento INTAKE dentro de la tx del caller.
func intake(ctx context.Context, r Repos, warehouseID string, line *intakeLine, meta movementMeta) (*entity.Lot, error) {
	if err := ensureProduct(ctx, r, line.productID); err != nil {
		return nil, err
	}
	at := now()
	receivedDate := entity.DateOnly(at)
	if line.received != nil {
		receivedDate = *line.received
	}
	lot := &entity.Lot{
		ID:                uuid.New().String(),
		ProductID:         line.productID,
		WarehouseID:       warehouseID,
		ReceivedQuantity:  line.quantity,
		RemainingQuantity: line.quantity,
		UnitCost:          line.unitCost,
		ReceivedDate:      receivedDate,
		ExpiryDate:        line.expiry,
		CreatedAt:         at,
		UpdatedAt:         at,
	}
	if _, err := openLot(ctx, r, lot, entity.MovementIntake, meta); err != nil {
		return nil, err
	}
	return lot, nil
}

// CreateLot registra un lote nuevo y su movimiento INTAKE en una sola transacción.
func (uc *LotUseCase) CreateLot(ctx context.Context, actor string, in dto.CreateLotRequest) (*entity.Lot, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	line, err := parseIntakeLine(in.ProductID, in.Quantity, in.UnitCost, in.ReceivedDate, in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	meta := newMeta(actor)
	meta.notes = in.Notes
	meta.reference = in.ReferenceID

	var lot *entity.Lot
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		if _, err := ensureWarehouse(ctx, r, in.WarehouseID); err != nil {
			return err
		}
		lot, err = intake(ctx, r, in.WarehouseID, line, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", lot.ID).
		Str("product_id", lot.ProductID).
		Str("warehouse_id", lot.WarehouseID).
		Str("quantity", lot.ReceivedQuantity.String()).
		Str("actor", actor).
		Msg("lote registrado")
	return lot, nil
}

// CreateLots registra todas las líneas de una donación en una sola transacción.
// Una línea inválida (producto inexistente, cantidad no positiva) anula el ingreso completo.
func (uc *LotUseCase) CreateLots(ctx context.Context, actor string, in dto.CreateLotsRequest) ([]*entity.Lot, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	lines := make([]*intakeLine, 0, len(in.Items))
	for i, it := range in.Items {
		line, err := parseIntakeLine(it.ProductID, it.Quantity, it.UnitCost, it.ReceivedDate, it.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	meta := newMeta(actor)
	meta.notes = in.Notes
	meta.reference = in.ReferenceID

	var lots []*entity.Lot
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		lots = lots[:0]
		if _, err := ensureWarehouse(ctx, r, in.WarehouseID); err != nil {
			return err
		}
		for i, line := range lines {
			lot, err := intake(ctx, r, in.WarehouseID, line, meta)
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}
			lots = append(lots, lot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("transaction_id", meta.txID).
		Str("warehouse_id", in.WarehouseID).
		Str("reference_id", in.ReferenceID).
		Int("lots", len(lots)).
		Msg("ingreso múltiple registrado")
	return lots, nil
}

// Consume registra una salida manual (CONSUMPTION) desde un lote específico.
func (uc *LotUseCase) Consume(ctx context.Context, actor, lotID string, in dto.ConsumeLotRequest) (*entity.Lot, *entity.Movement, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, nil, err
	}
	if err := requirePositive(in.Quantity); err != nil {
		return nil, nil, err
	}
	meta := newMeta(actor)
	meta.notes = in.Notes
	meta.department = in.RequestingDepartment
	meta.recipient = in.RecipientOrganization
	meta.reference = in.ReferenceID

	var (
		lot *entity.Lot
		mov *entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		lot, err = lockLot(ctx, r, lotID)
		if err != nil {
			return err
		}
		if lot.Expired {
			return fmt.Errorf("%w: %s", domain.ErrLotExpired, lot.ID)
		}
		mov, err = applyDelta(ctx, r, lot, in.Quantity.Neg(), entity.MovementConsumption, meta, now())
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	uc.log.Info().
		Str("lot_id", lot.ID).
		Str("quantity", in.Quantity.String()).
		Str("remaining", lot.RemainingQuantity.String()).
		Str("actor", actor).
		Msg("salida registrada")
	return lot, mov, nil
}

// AdjustRemaining descuenta delta.Abs() de un lote bajo bloqueo de fila y escribe el
// movimiento CONSUMPTION. Solo admite deltas negativos: las correcciones de existencia
// pasan por AdjustmentUseCase, que exige doble control.
func (uc *LotUseCase) AdjustRemaining(ctx context.Context, actor, lotID string, delta decimal.Decimal, typ entity.MovementType, notes string) (*entity.Lot, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if typ != entity.MovementConsumption {
		return nil, fmt.Errorf("%w: tipo de movimiento %s no admitido, use el flujo de ajustes", domain.ErrInvalidInput, typ)
	}
	if !delta.IsNegative() {
		return nil, fmt.Errorf("%w: un consumo requiere delta negativo", domain.ErrInvalidQuantity)
	}
	if err := requireStorable("delta", delta); err != nil {
		return nil, err
	}
	meta := newMeta(actor)
	meta.notes = notes

	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if lot, err = lockLot(ctx, r, lotID); err != nil {
			return err
		}
		_, err = applyDelta(ctx, r, lot, delta, typ, meta, now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// GetLot obtiene un lote por ID.
func (uc *LotUseCase) GetLot(ctx context.Context, id string) (*entity.Lot, error) {
	lot, err := uc.read.Lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return lot, nil
}

// ListLots lista lotes. Sin IncludeExpired/IncludeEmpty devuelve solo los utilizables en orden FEFO.
func (uc *LotUseCase) ListLots(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	return uc.read.Lots.List(ctx, f)
}

// UsableLots devuelve los lotes utilizables de un producto en una bodega, en orden de consumo.
func (uc *LotUseCase) UsableLots(ctx context.Context, productID, warehouseID string) ([]*entity.Lot, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.read.Lots.List(ctx, repository.LotFilter{ProductID: productID, WarehouseID: warehouseID})
}

// LotMovements historial de movimientos de un lote, más reciente primero.
func (uc *LotUseCase) LotMovements(ctx context.Context, lotID string, limit, offset int) ([]*entity.Movement, error) {
	if _, err := uc.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	return uc.read.Movements.List(ctx, repository.MovementFilter{LotID: lotID, Limit: limit, Offset: offset})
}

// ListMovements historial filtrado del libro.
func (uc *LotUseCase) ListMovements(ctx context.Context, in dto.MovementListRequest) ([]*entity.Movement, error) {
	in.DefaultPage()
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return uc.read.Movements.List(ctx, repository.MovementFilter{
		LotID:         in.LotID,
		Type:          entity.MovementType(in.Type),
		TransactionID: in.TransactionID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
}
