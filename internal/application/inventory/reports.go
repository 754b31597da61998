package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

// ReportUseCase consultas de solo lectura sobre lotes y libro.
type ReportUseCase struct {
	read Repos
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(read Repos) *ReportUseCase {
	return &ReportUseCase{read: read}
}

// StockSummary existencia por producto y bodega: cantidad utilizable, cantidad vencida,
// lotes utilizables, vencimiento más próximo y costo promedio ponderado.
func (uc *ReportUseCase) StockSummary(ctx context.Context, in dto.StockSummaryRequest, today time.Time) ([]dto.StockSummaryRow, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	lots, err := uc.read.Lots.List(ctx, repository.LotFilter{
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		IncludeExpired: true,
	})
	if err != nil {
		return nil, err
	}

	groups := make(map[stockKey][]*entity.Lot)
	for _, l := range lots {
		k := stockKey{l.ProductID, l.WarehouseID}
		groups[k] = append(groups[k], l)
	}

	rows := make([]dto.StockSummaryRow, 0, len(groups))
	for k, group := range groups {
		usable := inventory.Usable(group)
		row := dto.StockSummaryRow{
			ProductID:       k.productID,
			WarehouseID:     k.warehouseID,
			UsableQuantity:  inventory.Available(usable),
			ExpiredQuantity: decimal.Zero,
			LotCount:        len(usable),
			AverageUnitCost: inventory.WeightedAverageCost(usable),
		}
		for _, l := range group {
			if l.Expired {
				row.ExpiredQuantity = row.ExpiredQuantity.Add(l.RemainingQuantity)
			}
		}
		// Usable viene en orden FEFO: el primero con fecha es el más próximo a vencer.
		if len(usable) > 0 && usable[0].ExpiryDate != nil {
			row.SoonestExpiry = dto.FormatDate(usable[0].ExpiryDate)
			_, days, _ := inventory.ClassifyExpiry(usable[0], today, 0)
			row.DaysToExpiry = &days
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProductID != rows[j].ProductID {
			return rows[i].ProductID < rows[j].ProductID
		}
		return rows[i].WarehouseID < rows[j].WarehouseID
	})
	return rows, nil
}

// Reconcile compara la existencia del lote contra la suma de sus movimientos.
// Un lote consistente cumple remaining == Σ delta. Ambos valores se leen juntos para
// que una escritura concurrente no produzca un falso descuadre.
func (uc *ReportUseCase) Reconcile(ctx context.Context, lotID string) (*dto.ReconciliationResponse, error) {
	lot, sum, err := uc.read.Lots.GetWithLedgerSum(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
	}
	return &dto.ReconciliationResponse{
		LotID:             lot.ID,
		ReceivedQuantity:  lot.ReceivedQuantity,
		RemainingQuantity: lot.RemainingQuantity,
		LedgerSum:         sum,
		Consistent:        lot.RemainingQuantity.Equal(sum),
	}, nil
}
