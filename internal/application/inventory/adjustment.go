package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// AdjustmentUseCase correcciones de existencia con doble control.
type AdjustmentUseCase struct {
	txRunner TxRunner
	read     Repos
	log      *logger.Logger
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner TxRunner, read Repos, log *logger.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, read: read, log: log.Component("adjustments")}
}

// Create registra una solicitud PENDING con la existencia actual como referencia.
func (uc *AdjustmentUseCase) Create(ctx context.Context, actor string, in dto.CreateAdjustmentRequest) (*entity.AdjustmentRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.QuantityAfter.IsNegative() {
		return nil, fmt.Errorf("%w: quantity_after no puede ser negativo", domain.ErrInvalidQuantity)
	}
	if err := requireStorable("quantity_after", in.QuantityAfter); err != nil {
		return nil, err
	}

	var a *entity.AdjustmentRequest
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		lot, err := r.Lots.GetByID(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, in.LotID)
		}
		dup, err := r.Adjustments.FindPendingDuplicate(ctx, lot.ID, actor, in.QuantityAfter)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: ajuste %s", domain.ErrDuplicateRequest, dup.ID)
		}
		a = &entity.AdjustmentRequest{
			ID:             uuid.New().String(),
			LotID:          lot.ID,
			QuantityBefore: lot.RemainingQuantity,
			QuantityAfter:  in.QuantityAfter,
			Reason:         in.Reason,
			Status:         entity.StatusPending,
			CreatedBy:      actor,
			CreatedAt:      now(),
		}
		return r.Adjustments.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("adjustment_id", a.ID).
		Str("lot_id", a.LotID).
		Str("quantity_before", a.QuantityBefore.String()).
		Str("quantity_after", a.QuantityAfter.String()).
		Str("actor", actor).
		Msg("ajuste solicitado")
	return a, nil
}

// Approve aplica quantity_after al lote. El delta se calcula contra la existencia bloqueada
// en este momento, no contra la referencia de la solicitud. Quien aprueba debe ser distinto
// de quien creó la solicitud.
func (uc *AdjustmentUseCase) Approve(ctx context.Context, actor, id string, in dto.ApproveRequest) (*entity.AdjustmentRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	var a *entity.AdjustmentRequest
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if a, err = lockAdjustment(ctx, r, id); err != nil {
			return err
		}
		if err := a.CanApprove(actor); err != nil {
			return err
		}
		lot, err := lockLot(ctx, r, a.LotID)
		if err != nil {
			return err
		}
		delta := a.QuantityAfter.Sub(lot.RemainingQuantity)

		meta := newMeta(actor)
		meta.notes = a.Reason
		meta.reference = a.ID
		at := now()
		if _, err := applyDelta(ctx, r, lot, delta, entity.MovementAdjustment, meta, at); err != nil {
			return err
		}
		if err := a.Approve(actor, in.Notes, delta, at); err != nil {
			return err
		}
		return r.Adjustments.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("adjustment_id", a.ID).
		Str("lot_id", a.LotID).
		Str("delta", a.AppliedDelta.String()).
		Str("actor", actor).
		Msg("ajuste aprobado")
	return a, nil
}

// Reject marca la solicitud REJECTED. No afecta el stock.
func (uc *AdjustmentUseCase) Reject(ctx context.Context, actor, id string, in dto.RejectRequest) (*entity.AdjustmentRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var a *entity.AdjustmentRequest
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if a, err = lockAdjustment(ctx, r, id); err != nil {
			return err
		}
		if err := a.Reject(actor, in.Reason, now()); err != nil {
			return err
		}
		return r.Adjustments.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("adjustment_id", a.ID).Str("actor", actor).Msg("ajuste rechazado")
	return a, nil
}

// Get obtiene una solicitud por ID.
func (uc *AdjustmentUseCase) Get(ctx context.Context, id string) (*entity.AdjustmentRequest, error) {
	a, err := uc.read.Adjustments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
	}
	return a, nil
}

// List lista solicitudes, más recientes primero.
func (uc *AdjustmentUseCase) List(ctx context.Context, in dto.RequestListRequest) ([]*entity.AdjustmentRequest, error) {
	in.DefaultPage()
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return uc.read.Adjustments.List(ctx, repository.RequestFilter{
		Status:      entity.RequestStatus(in.Status),
		LotID:       in.LotID,
		WarehouseID: in.WarehouseID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
}

func lockAdjustment(ctx context.Context, r Repos, id string) (*entity.AdjustmentRequest, error) {
	a, err := r.Adjustments.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
	}
	return a, nil
}
