package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// ExpiryUseCase barrido de vencimientos y reporte de caducidad.
type ExpiryUseCase struct {
	txRunner TxRunner
	read     Repos
	log      *logger.Logger
	opts     Options
}

// NewExpiryUseCase construye el caso de uso.
func NewExpiryUseCase(txRunner TxRunner, read Repos, log *logger.Logger, opts Options) *ExpiryUseCase {
	return &ExpiryUseCase{txRunner: txRunner, read: read, log: log.Component("expiry"), opts: opts}
}

// Sweep marca como vencido todo lote no marcado cuya fecha de vencimiento es anterior a asOf
// y escribe un movimiento EXPIRY con delta 0 por lote. La existencia no cambia: el lote
// solo deja de ser utilizable. Correrlo dos veces con la misma fecha no marca nada nuevo.
func (uc *ExpiryUseCase) Sweep(ctx context.Context, actor string, asOf time.Time) (*dto.SweepResponse, error) {
	if actor == "" {
		actor = SystemActor
	}
	asOf = entity.DateOnly(asOf)
	meta := newMeta(actor)
	meta.notes = "vencido al " + asOf.Format(dto.DateLayout)

	out := &dto.SweepResponse{AsOf: asOf.Format(dto.DateLayout), LotIDs: []string{}}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		out.LotIDs = out.LotIDs[:0]
		lots, err := r.Lots.ListExpirableForUpdate(ctx, asOf)
		if err != nil {
			return err
		}
		at := now()
		for _, l := range lots {
			if l.Expired || !l.PastExpiry(asOf) {
				continue
			}
			if err := r.Lots.MarkExpired(ctx, l.ID, at); err != nil {
				return err
			}
			if err := r.Movements.Create(ctx, meta.movement(l.ID, entity.MovementExpiry, decimal.Zero, at)); err != nil {
				return err
			}
			out.LotIDs = append(out.LotIDs, l.ID)
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("as_of", out.AsOf).Msg("barrido de vencimientos falló")
		return nil, err
	}
	out.Flagged = len(out.LotIDs)
	if out.Flagged > 0 {
		out.TransactionID = meta.txID
	}
	uc.log.Info().Str("as_of", out.AsOf).Int("flagged", out.Flagged).Str("actor", actor).Msg("barrido de vencimientos")
	return out, nil
}

// Pending devuelve, sin bloquear ni modificar, los lotes que Sweep marcaría con esa fecha
// de corte, incluidos los lotes ya agotados.
func (uc *ExpiryUseCase) Pending(ctx context.Context, asOf time.Time) ([]*entity.Lot, error) {
	asOf = entity.DateOnly(asOf)
	lots, err := uc.read.Lots.List(ctx, repository.LotFilter{IncludeEmpty: true, WithExpiryOnly: true})
	if err != nil {
		return nil, err
	}
	out := lots[:0]
	for _, l := range lots {
		if !l.Expired && l.PastExpiry(asOf) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Report lista los lotes con existencia y fecha de vencimiento, clasificados en
// EXPIRED, EXPIRING_SOON u OK, ordenados por vencimiento.
func (uc *ExpiryUseCase) Report(ctx context.Context, in dto.ExpiryReportRequest, today time.Time) ([]dto.ExpiryReportRow, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.AsOf != "" {
		t, err := dto.ParseDate(in.AsOf)
		if err != nil {
			return nil, err
		}
		today = t
	}
	window := in.Days
	if window == 0 {
		window = uc.opts.ExpiringSoonDays
	}
	lots, err := uc.read.Lots.List(ctx, repository.LotFilter{
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		IncludeExpired: true,
		WithExpiryOnly: true,
	})
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(lots)

	rows := make([]dto.ExpiryReportRow, 0, len(lots))
	for _, l := range lots {
		status, days, ok := inventory.ClassifyExpiry(l, today, window)
		if !ok {
			continue
		}
		rows = append(rows, dto.ExpiryReportRow{
			LotID:             l.ID,
			ProductID:         l.ProductID,
			WarehouseID:       l.WarehouseID,
			RemainingQuantity: l.RemainingQuantity,
			ExpiryDate:        l.ExpiryDate.Format(dto.DateLayout),
			DaysToExpiry:      days,
			Status:            string(status),
			IsExpired:         l.Expired,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DaysToExpiry < rows[j].DaysToExpiry })
	return rows, nil
}
