// Package memory implementa los puertos del libro de lotes en memoria.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado
// que solo se publica si la función termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	lots        map[string]*entity.Lot
	movements   []*entity.Movement
	transfers   map[string]*entity.TransferRequest
	adjustments map[string]*entity.AdjustmentRequest
}

func newState() *state {
	return &state{
		products:    map[string]*entity.Product{},
		warehouses:  map[string]*entity.Warehouse{},
		lots:        map[string]*entity.Lot{},
		transfers:   map[string]*entity.TransferRequest{},
		adjustments: map[string]*entity.AdjustmentRequest{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.warehouses {
		w := *v
		c.warehouses[k] = &w
	}
	for k, v := range s.lots {
		c.lots[k] = v.Clone()
	}
	// Los movimientos son inmutables: basta copiar el slice.
	c.movements = append(make([]*entity.Movement, 0, len(s.movements)+4), s.movements...)
	for k, v := range s.transfers {
		c.transfers[k] = v.Clone()
	}
	for k, v := range s.adjustments {
		c.adjustments[k] = v.Clone()
	}
	return c
}

// Store almacén en memoria. Sirve a los tests de casos de uso y de handlers HTTP.
type Store struct {
	mu    sync.Mutex
	st    *state
	fault func(op string) error
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

// SetFault instala un gancho que se consulta antes de cada escritura; si devuelve error la
// escritura falla con ese error. Operaciones: "lots.create", "lots.update", "lots.expire",
// "movements.create:<TIPO>", "transfers.create", "transfers.update", "adjustments.create",
// "adjustments.update".
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// SeedProduct registra un producto del catálogo.
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.st.products[p.ID] = &c
}

// SeedWarehouse registra una bodega.
func (s *Store) SeedWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *w
	s.st.warehouses[w.ID] = &c
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, s.repos(work)); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repos devuelve repositorios fuera de transacción; cada llamada toma el mutex.
// No deben usarse dentro de Run.
func (s *Store) Repos() inventory.Repos {
	return s.repos(nil)
}

func (s *Store) repos(st *state) inventory.Repos {
	v := view{s: s, st: st}
	return inventory.Repos{
		Lots:        lotRepo{v},
		Movements:   movementRepo{v},
		Transfers:   transferRepo{v},
		Adjustments: adjustmentRepo{v},
		Warehouses:  warehouseRepo{v},
		Products:    productRepo{v},
	}
}

// view acceso al estado: st != nil dentro de una transacción (el mutex ya está tomado).
type view struct {
	s  *Store
	st *state
}

func (v view) do(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

func (v view) fail(op string) error {
	if v.s.fault == nil {
		return nil
	}
	return v.s.fault(op)
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
