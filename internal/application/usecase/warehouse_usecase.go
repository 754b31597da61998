package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/dto"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

// WarehouseUseCase registro de bodegas (destinos válidos de traslados).
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una nueva bodega activa.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Location:  in.Location,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	if err := dto.Validate(page); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Location:  w.Location,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
