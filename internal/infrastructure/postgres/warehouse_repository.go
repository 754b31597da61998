package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, location, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.IsActive,
		warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe una bodega llamada %q", domain.ErrInvalidInput, warehouse.Name)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, is_active, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// List lista bodegas por nombre con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, is_active, created_at, updated_at
		FROM warehouses ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
