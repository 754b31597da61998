package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// CreateLotRequest ingreso de un lote (línea de donación o compra).
type CreateLotRequest struct {
	ProductID    string          `json:"product_id" validate:"required,max=64"`
	WarehouseID  string          `json:"warehouse_id" validate:"required,max=64"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ReceivedDate string          `json:"received_date,omitempty" validate:"omitempty,datetime=2006-01-02"` // vacío = hoy
	ExpiryDate   string          `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes        string          `json:"notes,omitempty" validate:"max=500"`
	ReferenceID  string          `json:"reference_id,omitempty" validate:"max=100"`
}

// CreateLotItem línea de un ingreso por lote múltiple.
type CreateLotItem struct {
	ProductID    string          `json:"product_id" validate:"required,max=64"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ReceivedDate string          `json:"received_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate   string          `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CreateLotsRequest donación con varias líneas: todas se registran o ninguna.
type CreateLotsRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required,max=64"`
	ReferenceID string          `json:"reference_id,omitempty" validate:"max=100"` // ej. id de la donación
	Notes       string          `json:"notes,omitempty" validate:"max=500"`
	Items       []CreateLotItem `json:"items" validate:"required,min=1,max=200,dive"`
}

// ConsumeLotRequest salida manual desde un lote elegido.
type ConsumeLotRequest struct {
	Quantity              decimal.Decimal `json:"quantity"`
	Notes                 string          `json:"notes,omitempty" validate:"max=500"`
	RequestingDepartment  string          `json:"requesting_department,omitempty" validate:"max=150"`
	RecipientOrganization string          `json:"recipient_organization,omitempty" validate:"max=150"`
	ReferenceID           string          `json:"reference_id,omitempty" validate:"max=100"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ReceivedDate      string          `json:"received_date"`
	ExpiryDate        *string         `json:"expiry_date"`
	IsExpired         bool            `json:"is_expired"`
	SourceLotID       string          `json:"source_lot_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewLotResponse mapea la entidad a la respuesta HTTP.
func NewLotResponse(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		WarehouseID:       l.WarehouseID,
		ReceivedQuantity:  l.ReceivedQuantity,
		RemainingQuantity: l.RemainingQuantity,
		UnitCost:          l.UnitCost,
		ReceivedDate:      l.ReceivedDate.Format(DateLayout),
		ExpiryDate:        FormatDate(l.ExpiryDate),
		IsExpired:         l.Expired,
		SourceLotID:       l.SourceLotID,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// NewLotResponses mapea una lista de lotes.
func NewLotResponses(lots []*entity.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, NewLotResponse(l))
	}
	return out
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID                    string          `json:"id"`
	TransactionID         string          `json:"transaction_id"`
	LotID                 string          `json:"lot_id"`
	Type                  string          `json:"type"`
	Delta                 decimal.Decimal `json:"delta"`
	Notes                 string          `json:"notes,omitempty"`
	RequestingDepartment  string          `json:"requesting_department,omitempty"`
	RecipientOrganization string          `json:"recipient_organization,omitempty"`
	ReferenceID           string          `json:"reference_id,omitempty"`
	CreatedBy             string          `json:"created_by"`
	CreatedAt             time.Time       `json:"created_at"`
}

// NewMovementResponses mapea una lista de movimientos.
func NewMovementResponses(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementResponse{
			ID:                    m.ID,
			TransactionID:         m.TransactionID,
			LotID:                 m.LotID,
			Type:                  string(m.Type),
			Delta:                 m.Delta,
			Notes:                 m.Notes,
			RequestingDepartment:  m.RequestingDepartment,
			RecipientOrganization: m.RecipientOrganization,
			ReferenceID:           m.ReferenceID,
			CreatedBy:             m.CreatedBy,
			CreatedAt:             m.CreatedAt,
		})
	}
	return out
}

// MovementListRequest filtros de GET /api/movements.
type MovementListRequest struct {
	LotID         string `query:"lot_id" validate:"max=64"`
	Type          string `query:"type" validate:"omitempty,oneof=INTAKE CONSUMPTION TRANSFER_OUT TRANSFER_IN ADJUSTMENT EXPIRY"`
	TransactionID string `query:"transaction_id" validate:"max=64"`
	PageRequest
}
