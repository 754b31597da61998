package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// Allocation cantidad a tomar de un lote dentro de un plan FEFO.
type Allocation struct {
	Lot      *entity.Lot
	Quantity decimal.Decimal
}

// ConsumesBefore define el orden FEFO: vencimiento más próximo primero, lotes sin
// vencimiento al final; empates por fecha de recepción, luego creación e ID.
func ConsumesBefore(a, b *entity.Lot) bool {
	switch {
	case a.ExpiryDate != nil && b.ExpiryDate == nil:
		return true
	case a.ExpiryDate == nil && b.ExpiryDate != nil:
		return false
	case a.ExpiryDate != nil && b.ExpiryDate != nil:
		ea, eb := entity.DateOnly(*a.ExpiryDate), entity.DateOnly(*b.ExpiryDate)
		if !ea.Equal(eb) {
			return ea.Before(eb)
		}
	}
	ra, rb := entity.DateOnly(a.ReceivedDate), entity.DateOnly(b.ReceivedDate)
	if !ra.Equal(rb) {
		return ra.Before(rb)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortFEFO ordena los lotes en sitio en orden de consumo.
func SortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool { return ConsumesBefore(lots[i], lots[j]) })
}

// Usable filtra los lotes no vencidos con existencia y los devuelve en orden FEFO.
func Usable(lots []*entity.Lot) []*entity.Lot {
	out := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.IsUsable() {
			out = append(out, l)
		}
	}
	SortFEFO(out)
	return out
}

// Available suma la existencia utilizable.
func Available(lots []*entity.Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if l.IsUsable() {
			total = total.Add(l.RemainingQuantity)
		}
	}
	return total
}

// PlanFEFO reparte quantity entre los lotes utilizables tomando de cada uno
// min(existencia, faltante) en orden FEFO. No modifica los lotes.
// Si la existencia total no alcanza devuelve ErrInsufficientStock y ningún plan.
func PlanFEFO(lots []*entity.Lot, quantity decimal.Decimal) ([]Allocation, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	usable := Usable(lots)
	if avail := Available(usable); avail.LessThan(quantity) {
		return nil, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, avail, quantity)
	}

	plan := make([]Allocation, 0, 2)
	need := quantity
	for _, l := range usable {
		if !need.IsPositive() {
			break
		}
		take := decimal.Min(l.RemainingQuantity, need)
		plan = append(plan, Allocation{Lot: l, Quantity: take})
		need = need.Sub(take)
	}
	return plan, nil
}
