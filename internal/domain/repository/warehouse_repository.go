package repository

import (
	"context"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
}
