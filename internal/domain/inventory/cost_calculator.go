package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// CostCalculator costo promedio ponderado de dos partidas.
// Costo = ((CantA * CostoA) + (CantB * CostoB)) / (CantA + CantB)
func CostCalculator(qtyA, costA, qtyB, costB decimal.Decimal) decimal.Decimal {
	sum := qtyA.Add(qtyB)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return qtyA.Mul(costA).Add(qtyB.Mul(costB)).Div(sum)
}

// WeightedAverageCost costo promedio de la existencia utilizable de un conjunto de lotes.
func WeightedAverageCost(lots []*entity.Lot) decimal.Decimal {
	qty, cost := decimal.Zero, decimal.Zero
	for _, l := range lots {
		if !l.IsUsable() {
			continue
		}
		cost = CostCalculator(qty, cost, l.RemainingQuantity, l.UnitCost)
		qty = qty.Add(l.RemainingQuantity)
	}
	return cost.Round(4)
}
