package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/pkg/logger"
)

// AllocationUseCase consumo FEFO: primero vence, primero sale.
type AllocationUseCase struct {
	txRunner TxRunner
	read     Repos
	log      *logger.Logger
}

// NewAllocationUseCase construye el caso de uso.
func NewAllocationUseCase(txRunner TxRunner, read Repos, log *logger.Logger) *AllocationUseCase {
	return &AllocationUseCase{txRunner: txRunner, read: read, log: log.Component("allocation")}
}

type stockKey struct {
	productID   string
	warehouseID string
}

// Allocate descuenta quantity de los lotes utilizables del producto en la bodega, en orden FEFO.
// Si la existencia utilizable no alcanza devuelve ErrInsufficientStock y no descuenta nada.
func (uc *AllocationUseCase) Allocate(ctx context.Context, actor string, in dto.AllocateRequest) (*dto.AllocationResponse, error) {
	out, err := uc.AllocateMany(ctx, actor, dto.AllocateManyRequest{
		Lines:                 []dto.AllocateLine{{ProductID: in.ProductID, WarehouseID: in.WarehouseID, Quantity: in.Quantity}},
		Notes:                 in.Notes,
		RequestingDepartment:  in.RequestingDepartment,
		RecipientOrganization: in.RecipientOrganization,
		ReferenceID:           in.ReferenceID,
	})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AllocateMany surte varias líneas (pedido de cocina) en una sola transacción: todas o ninguna.
// Los lotes de cada par producto+bodega se bloquean antes de descontar, en orden estable
// para que dos pedidos concurrentes no se bloqueen mutuamente.
func (uc *AllocationUseCase) AllocateMany(ctx context.Context, actor string, in dto.AllocateManyRequest) ([]dto.AllocationResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	keys := make([]stockKey, 0, len(in.Lines))
	seen := make(map[stockKey]bool, len(in.Lines))
	for i, line := range in.Lines {
		if err := requirePositive(line.Quantity); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		k := stockKey{line.ProductID, line.WarehouseID}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].productID != keys[j].productID {
			return keys[i].productID < keys[j].productID
		}
		return keys[i].warehouseID < keys[j].warehouseID
	})

	meta := newMeta(actor)
	meta.notes = in.Notes
	meta.department = in.RequestingDepartment
	meta.recipient = in.RecipientOrganization
	meta.reference = in.ReferenceID

	var results []dto.AllocationResponse
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		results = results[:0]
		pools := make(map[stockKey][]*entity.Lot, len(keys))
		for _, k := range keys {
			lots, err := r.Lots.ListUsableForUpdate(ctx, k.productID, k.warehouseID)
			if err != nil {
				return err
			}
			pools[k] = lots
		}
		for i, line := range in.Lines {
			res, err := allocateLine(ctx, r, pools[stockKey{line.ProductID, line.WarehouseID}], line, meta)
			if err != nil {
				if len(in.Lines) == 1 {
					return err
				}
				return fmt.Errorf("línea %d (producto %s): %w", i+1, line.ProductID, err)
			}
			res.TransactionID = meta.txID
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("actor", actor).Int("lines", len(in.Lines)).Msg("consumo rechazado")
		return nil, err
	}
	for _, res := range results {
		uc.log.Info().
			Str("transaction_id", res.TransactionID).
			Str("product_id", res.ProductID).
			Str("warehouse_id", res.WarehouseID).
			Str("quantity", res.Requested.String()).
			Int("lots", len(res.Lines)).
			Str("actor", actor).
			Msg("consumo FEFO aplicado")
	}
	return results, nil
}

// allocateLine planifica y aplica una línea sobre lotes ya bloqueados.
func allocateLine(ctx context.Context, r Repos, lots []*entity.Lot, line dto.AllocateLine, meta movementMeta) (*dto.AllocationResponse, error) {
	plan, err := inventory.PlanFEFO(lots, line.Quantity)
	if err != nil {
		return nil, err
	}
	res := &dto.AllocationResponse{
		ProductID:   line.ProductID,
		WarehouseID: line.WarehouseID,
		Requested:   line.Quantity,
		Lines:       make([]dto.AllocationLineResponse, 0, len(plan)),
	}
	at := now()
	for _, a := range plan {
		mov, err := applyDelta(ctx, r, a.Lot, a.Quantity.Neg(), entity.MovementConsumption, meta, at)
		if err != nil {
			return nil, err
		}
		res.Lines = append(res.Lines, dto.AllocationLineResponse{
			LotID:          a.Lot.ID,
			Quantity:       a.Quantity,
			RemainingAfter: a.Lot.RemainingQuantity,
			ExpiryDate:     dto.FormatDate(a.Lot.ExpiryDate),
			MovementID:     mov.ID,
		})
	}
	return res, nil
}

// Preview muestra qué lotes se consumirían sin modificar nada. Con quantity nil lista
// los lotes utilizables en orden de consumo con su existencia completa.
func (uc *AllocationUseCase) Preview(ctx context.Context, productID, warehouseID string, quantity *decimal.Decimal) (*dto.PreviewResponse, error) {
	if productID == "" || warehouseID == "" {
		return nil, fmt.Errorf("%w: product_id y warehouse_id son requeridos", domain.ErrInvalidInput)
	}
	if quantity != nil {
		if err := requirePositive(*quantity); err != nil {
			return nil, err
		}
	}
	lots, err := uc.read.Lots.List(ctx, repository.LotFilter{ProductID: productID, WarehouseID: warehouseID})
	if err != nil {
		return nil, err
	}
	usable := inventory.Usable(lots)
	out := &dto.PreviewResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Available:   inventory.Available(usable),
		Requested:   quantity,
	}

	var plan []inventory.Allocation
	if quantity != nil {
		if plan, err = inventory.PlanFEFO(usable, *quantity); err != nil {
			return nil, err
		}
	} else {
		for _, l := range usable {
			plan = append(plan, inventory.Allocation{Lot: l, Quantity: l.RemainingQuantity})
		}
	}
	out.Lines = make([]dto.AllocationLineResponse, 0, len(plan))
	for _, a := range plan {
		out.Lines = append(out.Lines, dto.AllocationLineResponse{
			LotID:          a.Lot.ID,
			Quantity:       a.Quantity,
			RemainingAfter: a.Lot.RemainingQuantity.Sub(a.Quantity),
			ExpiryDate:     dto.FormatDate(a.Lot.ExpiryDate),
		})
	}
	return out, nil
}
