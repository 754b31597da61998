package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// TransferUseCase flujo de traslados entre bodegas: PENDING -> APPROVED | REJECTED.
type TransferUseCase struct {
	txRunner TxRunner
	read     Repos
	log      *logger.Logger
	opts     Options
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(txRunner TxRunner, read Repos, log *logger.Logger, opts Options) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, read: read, log: log.Component("transfers"), opts: opts}
}

// Request crea una solicitud PENDING. No mueve stock; la verificación de existencia aquí es
// orientativa y se repite con bloqueo al aprobar.
func (uc *TransferUseCase) Request(ctx context.Context, actor string, in dto.CreateTransferRequest) (*entity.TransferRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := requirePositive(in.Quantity); err != nil {
		return nil, err
	}

	var t *entity.TransferRequest
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		lot, err := r.Lots.GetByID(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.LotID)
		}
		if lot.Expired {
			return fmt.Errorf("%w: %s", domain.ErrLotExpired, lot.ID)
		}
		if lot.WarehouseID == in.ToWarehouseID {
			return fmt.Errorf("%w: la bodega destino es la misma del lote", domain.ErrInvalidInput)
		}
		if in.Quantity.GreaterThan(lot.RemainingQuantity) {
			return fmt.Errorf("%w: lote %s tiene %s, se solicitan %s",
				domain.ErrInsufficientStock, lot.ID, lot.RemainingQuantity, in.Quantity)
		}
		if _, err := ensureWarehouse(ctx, r, in.ToWarehouseID); err != nil {
			return err
		}
		dup, err := r.Transfers.FindPendingDuplicate(ctx, lot.ID, actor, in.ToWarehouseID, in.Quantity)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicateRequest, dup.ID)
		}
		t = &entity.TransferRequest{
			ID:              uuid.New().String(),
			LotID:           lot.ID,
			FromWarehouseID: lot.WarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Quantity:        in.Quantity,
			Status:          entity.StatusPending,
			Notes:           in.Notes,
			RequestedBy:     actor,
			CreatedAt:       now(),
		}
		return r.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("lot_id", t.LotID).
		Str("to_warehouse_id", t.ToWarehouseID).
		Str("quantity", t.Quantity.String()).
		Str("actor", actor).
		Msg("traslado solicitado")
	return t, nil
}

// Approve descuenta el lote origen, acredita el lote destino (fusionando o creando uno nuevo)
// y marca la solicitud APPROVED, todo en una transacción. Si el origen ya no tiene existencia
// suficiente devuelve ErrInsufficientStock y la solicitud sigue PENDING.
func (uc *TransferUseCase) Approve(ctx context.Context, actor, id string, in dto.ApproveRequest) (*entity.TransferRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	var t *entity.TransferRequest
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if t, err = lockTransfer(ctx, r, id); err != nil {
			return err
		}
		if t.Status != entity.StatusPending {
			return domain.ErrInvalidStateTransition
		}
		if uc.opts.TransferRequiresDistinctApprover && actor == t.RequestedBy {
			return domain.ErrSelfApprovalForbidden
		}
		source, err := lockLot(ctx, r, t.LotID)
		if err != nil {
			return err
		}
		if source.Expired {
			return fmt.Errorf("%w: %s", domain.ErrLotExpired, source.ID)
		}
		if _, err := ensureWarehouse(ctx, r, t.ToWarehouseID); err != nil {
			return err
		}

		meta := newMeta(actor)
		meta.notes = t.Notes
		meta.reference = t.ID
		at := now()

		if _, err := applyDelta(ctx, r, source, t.Quantity.Neg(), entity.MovementTransferOut, meta, at); err != nil {
			return err
		}
		dest, err := creditDestination(ctx, r, source, t, meta, at)
		if err != nil {
			return err
		}
		if err := t.Approve(actor, in.Notes, dest.ID, at); err != nil {
			return err
		}
		return r.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("lot_id", t.LotID).
		Str("destination_lot_id", t.DestinationLotID).
		Str("quantity", t.Quantity.String()).
		Str("actor", actor).
		Msg("traslado aprobado")
	return t, nil
}

// creditDestination suma la cantidad a un lote compatible de la bodega destino
// (mismo producto, fechas y costo) o crea uno nuevo que hereda fechas y costo del origen.
func creditDestination(ctx context.Context, r Repos, source *entity.Lot, t *entity.TransferRequest, meta movementMeta, at time.Time) (*entity.Lot, error) {
	dest, err := r.Lots.FindMergeTargetForUpdate(ctx, repository.LotMergeKey{
		ProductID:    source.ProductID,
		WarehouseID:  t.ToWarehouseID,
		ReceivedDate: source.ReceivedDate,
		ExpiryDate:   source.ExpiryDate,
		UnitCost:     source.UnitCost,
	})
	if err != nil {
		return nil, err
	}
	if dest != nil {
		if _, err := applyDelta(ctx, r, dest, t.Quantity, entity.MovementTransferIn, meta, at); err != nil {
			return nil, err
		}
		return dest, nil
	}

	dest = source.Clone()
	dest.ID = uuid.New().String()
	dest.WarehouseID = t.ToWarehouseID
	dest.ReceivedQuantity = t.Quantity
	dest.RemainingQuantity = t.Quantity
	dest.SourceLotID = source.ID
	dest.Expired = false
	dest.CreatedAt = at
	dest.UpdatedAt = at
	if _, err := openLot(ctx, r, dest, entity.MovementTransferIn, meta); err != nil {
		return nil, err
	}
	return dest, nil
}

// Reject marca la solicitud REJECTED con su motivo. No afecta el stock.
func (uc *TransferUseCase) Reject(ctx context.Context, actor, id string, in dto.RejectRequest) (*entity.TransferRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var t *entity.TransferRequest
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if t, err = lockTransfer(ctx, r, id); err != nil {
			return err
		}
		if err := t.Reject(actor, in.Reason, now()); err != nil {
			return err
		}
		return r.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", t.ID).Str("actor", actor).Msg("traslado rechazado")
	return t, nil
}

// Get obtiene una solicitud por ID.
func (uc *TransferUseCase) Get(ctx context.Context, id string) (*entity.TransferRequest, error) {
	t, err := uc.read.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return t, nil
}

// List lista solicitudes, más recientes primero.
func (uc *TransferUseCase) List(ctx context.Context, in dto.RequestListRequest) ([]*entity.TransferRequest, error) {
	in.DefaultPage()
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return uc.read.Transfers.List(ctx, repository.RequestFilter{
		Status:      entity.RequestStatus(in.Status),
		LotID:       in.LotID,
		WarehouseID: in.WarehouseID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
}

func lockTransfer(ctx context.Context, r Repos, id string) (*entity.TransferRequest, error) {
	t, err := r.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return t, nil
}
