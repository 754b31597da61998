package dto

import (
	"github.com/shopspring/decimal"
)

// AllocateRequest consumo FEFO de un producto en una bodega.
type AllocateRequest struct {
	ProductID             string          `json:"product_id" validate:"required,max=64"`
	WarehouseID           string          `json:"warehouse_id" validate:"required,max=64"`
	Quantity              decimal.Decimal `json:"quantity"`
	Notes                 string          `json:"notes,omitempty" validate:"max=500"`
	RequestingDepartment  string          `json:"requesting_department,omitempty" validate:"max=150"`
	RecipientOrganization string          `json:"recipient_organization,omitempty" validate:"max=150"`
	ReferenceID           string          `json:"reference_id,omitempty" validate:"max=100"`
}

// AllocateLine línea de un pedido con varios productos.
type AllocateLine struct {
	ProductID   string          `json:"product_id" validate:"required,max=64"`
	WarehouseID string          `json:"warehouse_id" validate:"required,max=64"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// AllocateManyRequest pedido de cocina o área: se surte completo o no se surte.
type AllocateManyRequest struct {
	Lines                 []AllocateLine `json:"lines" validate:"required,min=1,max=200,dive"`
	Notes                 string         `json:"notes,omitempty" validate:"max=500"`
	RequestingDepartment  string         `json:"requesting_department,omitempty" validate:"max=150"`
	RecipientOrganization string         `json:"recipient_organization,omitempty" validate:"max=150"`
	ReferenceID           string         `json:"reference_id,omitempty" validate:"max=100"`
}

// AllocationLineResponse cantidad tomada de un lote.
type AllocationLineResponse struct {
	LotID          string          `json:"lot_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
	ExpiryDate     *string         `json:"expiry_date"`
	MovementID     string          `json:"movement_id,omitempty"`
}

// AllocationResponse resultado de un consumo FEFO.
type AllocationResponse struct {
	TransactionID string                   `json:"transaction_id,omitempty"`
	ProductID     string                   `json:"product_id"`
	WarehouseID   string                   `json:"warehouse_id"`
	Requested     decimal.Decimal          `json:"requested"`
	Lines         []AllocationLineResponse `json:"lines"`
}

// PreviewResponse vista previa de consumo (no modifica nada).
type PreviewResponse struct {
	ProductID   string                   `json:"product_id"`
	WarehouseID string                   `json:"warehouse_id"`
	Available   decimal.Decimal          `json:"available"`
	Requested   *decimal.Decimal         `json:"requested,omitempty"`
	Lines       []AllocationLineResponse `json:"lines"`
}
