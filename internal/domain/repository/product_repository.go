package repository

import (
	"context"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// ProductRepository consulta de productos del catálogo. Devuelve nil, nil si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
