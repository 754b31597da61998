package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

var (
	_ repository.LotRepository        = lotRepo{}
	_ repository.MovementRepository   = movementRepo{}
	_ repository.TransferRepository   = transferRepo{}
	_ repository.AdjustmentRepository = adjustmentRepo{}
	_ repository.WarehouseRepository  = warehouseRepo{}
	_ repository.ProductRepository    = productRepo{}
)

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

type lotRepo struct{ view }

func (r lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	return r.do(func(st *state) error {
		if err := r.fail("lots.create"); err != nil {
			return err
		}
		if _, ok := st.lots[lot.ID]; ok {
			return fmt.Errorf("insert lot: id %s duplicado", lot.ID)
		}
		st.lots[lot.ID] = lot.Clone()
		return nil
	})
}

func (r lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.do(func(st *state) error {
		if l, ok := st.lots[id]; ok {
			out = l.Clone()
		}
		return nil
	})
	return out, err
}

func (r lotRepo) GetWithLedgerSum(_ context.Context, id string) (*entity.Lot, decimal.Decimal, error) {
	var (
		out *entity.Lot
		sum = decimal.Zero
	)
	err := r.do(func(st *state) error {
		l, ok := st.lots[id]
		if !ok {
			return nil
		}
		out = l.Clone()
		for _, m := range st.movements {
			if m.LotID == id {
				sum = sum.Add(m.Delta)
			}
		}
		return nil
	})
	return out, sum, err
}

func (r lotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r lotRepo) ListUsableForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.Lot, error) {
	return r.List(ctx, repository.LotFilter{ProductID: productID, WarehouseID: warehouseID})
}

func (r lotRepo) List(_ context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.do(func(st *state) error {
		for _, l := range st.lots {
			if f.ProductID != "" && l.ProductID != f.ProductID {
				continue
			}
			if f.WarehouseID != "" && l.WarehouseID != f.WarehouseID {
				continue
			}
			if !f.IncludeExpired && l.Expired {
				continue
			}
			if !f.IncludeEmpty && !l.RemainingQuantity.IsPositive() {
				continue
			}
			if f.WithExpiryOnly && l.ExpiryDate == nil {
				continue
			}
			out = append(out, l.Clone())
		}
		return nil
	})
	inventory.SortFEFO(out)
	return page(out, f.Limit, f.Offset), err
}

func (r lotRepo) UpdateRemaining(_ context.Context, id string, remaining decimal.Decimal, at time.Time) error {
	return r.do(func(st *state) error {
		if err := r.fail("lots.update"); err != nil {
			return err
		}
		l, ok := st.lots[id]
		if !ok {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
		}
		if remaining.IsNegative() {
			return fmt.Errorf("update lot %s: existencia negativa", id)
		}
		l.RemainingQuantity = remaining
		l.UpdatedAt = at
		return nil
	})
}

func (r lotRepo) FindMergeTargetForUpdate(_ context.Context, key repository.LotMergeKey) (*entity.Lot, error) {
	var matches []*entity.Lot
	err := r.do(func(st *state) error {
		for _, l := range st.lots {
			if l.Expired || l.ProductID != key.ProductID || l.WarehouseID != key.WarehouseID {
				continue
			}
			if !entity.DateOnly(l.ReceivedDate).Equal(entity.DateOnly(key.ReceivedDate)) {
				continue
			}
			if !entity.SameDate(l.ExpiryDate, key.ExpiryDate) || !l.UnitCost.Equal(key.UnitCost) {
				continue
			}
			matches = append(matches, l.Clone())
		}
		return nil
	})
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	inventory.SortFEFO(matches)
	return matches[0], nil
}

func (r lotRepo) ListExpirableForUpdate(_ context.Context, asOf time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.do(func(st *state) error {
		for _, l := range st.lots {
			if !l.Expired && l.PastExpiry(asOf) {
				out = append(out, l.Clone())
			}
		}
		return nil
	})
	inventory.SortFEFO(out)
	return out, err
}

func (r lotRepo) MarkExpired(_ context.Context, id string, at time.Time) error {
	return r.do(func(st *state) error {
		if err := r.fail("lots.expire"); err != nil {
			return err
		}
		l, ok := st.lots[id]
		if !ok {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
		}
		l.Expired = true
		l.UpdatedAt = at
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct{ view }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.do(func(st *state) error {
		if err := r.fail("movements.create:" + string(m.Type)); err != nil {
			return err
		}
		c := *m
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.do(func(st *state) error {
		// Más reciente primero.
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.LotID != "" && m.LotID != f.LotID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.TransactionID != "" && m.TransactionID != f.TransactionID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			c := *m
			out = append(out, &c)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

// ──────────────────────────────────────────────────────────────────────────────
// Solicitudes
// ──────────────────────────────────────────────────────────────────────────────

type transferRepo struct{ view }

func (r transferRepo) Create(_ context.Context, t *entity.TransferRequest) error {
	return r.do(func(st *state) error {
		if err := r.fail("transfers.create"); err != nil {
			return err
		}
		st.transfers[t.ID] = t.Clone()
		return nil
	})
}

func (r transferRepo) GetByID(_ context.Context, id string) (*entity.TransferRequest, error) {
	var out *entity.TransferRequest
	err := r.do(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = t.Clone()
		}
		return nil
	})
	return out, err
}

func (r transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.GetByID(ctx, id)
}

func (r transferRepo) Update(_ context.Context, t *entity.TransferRequest) error {
	return r.do(func(st *state) error {
		if err := r.fail("transfers.update"); err != nil {
			return err
		}
		if _, ok := st.transfers[t.ID]; !ok {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
		}
		st.transfers[t.ID] = t.Clone()
		return nil
	})
}

func (r transferRepo) FindPendingDuplicate(_ context.Context, lotID, requestedBy, toWarehouseID string, qty decimal.Decimal) (*entity.TransferRequest, error) {
	var out *entity.TransferRequest
	err := r.do(func(st *state) error {
		for _, t := range st.transfers {
			if t.Status == entity.StatusPending && t.LotID == lotID && t.RequestedBy == requestedBy &&
				t.ToWarehouseID == toWarehouseID && t.Quantity.Equal(qty) {
				out = t.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r transferRepo) List(_ context.Context, f repository.RequestFilter) ([]*entity.TransferRequest, error) {
	var out []*entity.TransferRequest
	err := r.do(func(st *state) error {
		for _, t := range st.transfers {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.LotID != "" && t.LotID != f.LotID {
				continue
			}
			if f.WarehouseID != "" && t.FromWarehouseID != f.WarehouseID && t.ToWarehouseID != f.WarehouseID {
				continue
			}
			out = append(out, t.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, f.Limit, f.Offset), err
}

type adjustmentRepo struct{ view }

func (r adjustmentRepo) Create(_ context.Context, a *entity.AdjustmentRequest) error {
	return r.do(func(st *state) error {
		if err := r.fail("adjustments.create"); err != nil {
			return err
		}
		st.adjustments[a.ID] = a.Clone()
		return nil
	})
}

func (r adjustmentRepo) GetByID(_ context.Context, id string) (*entity.AdjustmentRequest, error) {
	var out *entity.AdjustmentRequest
	err := r.do(func(st *state) error {
		if a, ok := st.adjustments[id]; ok {
			out = a.Clone()
		}
		return nil
	})
	return out, err
}

func (r adjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.AdjustmentRequest, error) {
	return r.GetByID(ctx, id)
}

func (r adjustmentRepo) Update(_ context.Context, a *entity.AdjustmentRequest) error {
	return r.do(func(st *state) error {
		if err := r.fail("adjustments.update"); err != nil {
			return err
		}
		if _, ok := st.adjustments[a.ID]; !ok {
			return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, a.ID)
		}
		st.adjustments[a.ID] = a.Clone()
		return nil
	})
}

func (r adjustmentRepo) FindPendingDuplicate(_ context.Context, lotID, createdBy string, quantityAfter decimal.Decimal) (*entity.AdjustmentRequest, error) {
	var out *entity.AdjustmentRequest
	err := r.do(func(st *state) error {
		for _, a := range st.adjustments {
			if a.Status == entity.StatusPending && a.LotID == lotID && a.CreatedBy == createdBy &&
				a.QuantityAfter.Equal(quantityAfter) {
				out = a.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r adjustmentRepo) List(_ context.Context, f repository.RequestFilter) ([]*entity.AdjustmentRequest, error) {
	var out []*entity.AdjustmentRequest
	err := r.do(func(st *state) error {
		for _, a := range st.adjustments {
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.LotID != "" && a.LotID != f.LotID {
				continue
			}
			if f.WarehouseID != "" {
				if l, ok := st.lots[a.LotID]; !ok || l.WarehouseID != f.WarehouseID {
					continue
				}
			}
			out = append(out, a.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, f.Limit, f.Offset), err
}

func newer(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA > idB
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

type warehouseRepo struct{ view }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.do(func(st *state) error {
		c := *w
		st.warehouses[w.ID] = &c
		return nil
	})
}

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.do(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			c := *w
			out = &c
		}
		return nil
	})
	return out, err
}

func (r warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.do(func(st *state) error {
		for _, w := range st.warehouses {
			c := *w
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}

type productRepo struct{ view }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := *p
			out = &c
		}
		return nil
	})
	return out, err
}
