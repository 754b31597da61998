package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// CreateTransferRequest solicitud de traslado de un lote a otra bodega.
type CreateTransferRequest struct {
	LotID         string          `json:"lot_id" validate:"required,max=64"`
	ToWarehouseID string          `json:"to_warehouse_id" validate:"required,max=64"`
	Quantity      decimal.Decimal `json:"quantity"`
	Notes         string          `json:"notes,omitempty" validate:"max=500"`
}

// CreateAdjustmentRequest solicitud de ajuste: la cantidad final deseada del lote.
type CreateAdjustmentRequest struct {
	LotID         string          `json:"lot_id" validate:"required,max=64"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
	Reason        string          `json:"reason" validate:"required,max=500"`
}

// ApproveRequest cuerpo opcional al aprobar.
type ApproveRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=500"`
}

// RejectRequest motivo obligatorio al rechazar.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// RequestListRequest filtros para listar solicitudes.
type RequestListRequest struct {
	Status      string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	LotID       string `query:"lot_id" validate:"max=64"`
	WarehouseID string `query:"warehouse_id" validate:"max=64"`
	PageRequest
}

// TransferResponse salida de una solicitud de traslado.
type TransferResponse struct {
	ID               string          `json:"id"`
	LotID            string          `json:"lot_id"`
	FromWarehouseID  string          `json:"from_warehouse_id"`
	ToWarehouseID    string          `json:"to_warehouse_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes,omitempty"`
	RequestedBy      string          `json:"requested_by"`
	ResolvedBy       string          `json:"resolved_by,omitempty"`
	ResolutionNotes  string          `json:"resolution_notes,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	DestinationLotID string          `json:"destination_lot_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
}

// NewTransferResponse mapea la entidad.
func NewTransferResponse(t *entity.TransferRequest) TransferResponse {
	return TransferResponse{
		ID:               t.ID,
		LotID:            t.LotID,
		FromWarehouseID:  t.FromWarehouseID,
		ToWarehouseID:    t.ToWarehouseID,
		Quantity:         t.Quantity,
		Status:           string(t.Status),
		Notes:            t.Notes,
		RequestedBy:      t.RequestedBy,
		ResolvedBy:       t.ResolvedBy,
		ResolutionNotes:  t.ResolutionNotes,
		RejectionReason:  t.RejectionReason,
		DestinationLotID: t.DestinationLotID,
		CreatedAt:        t.CreatedAt,
		ResolvedAt:       t.ResolvedAt,
	}
}

// AdjustmentResponse salida de una solicitud de ajuste.
type AdjustmentResponse struct {
	ID              string          `json:"id"`
	LotID           string          `json:"lot_id"`
	QuantityBefore  decimal.Decimal `json:"quantity_before"`
	QuantityAfter   decimal.Decimal `json:"quantity_after"`
	AppliedDelta    decimal.Decimal `json:"applied_delta"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	CreatedBy       string          `json:"created_by"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	RejectedBy      string          `json:"rejected_by,omitempty"`
	ResolutionNotes string          `json:"resolution_notes,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// NewAdjustmentResponse mapea la entidad.
func NewAdjustmentResponse(a *entity.AdjustmentRequest) AdjustmentResponse {
	return AdjustmentResponse{
		ID:              a.ID,
		LotID:           a.LotID,
		QuantityBefore:  a.QuantityBefore,
		QuantityAfter:   a.QuantityAfter,
		AppliedDelta:    a.AppliedDelta,
		Reason:          a.Reason,
		Status:          string(a.Status),
		CreatedBy:       a.CreatedBy,
		ApprovedBy:      a.ApprovedBy,
		RejectedBy:      a.RejectedBy,
		ResolutionNotes: a.ResolutionNotes,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt,
		ResolvedAt:      a.ResolvedAt,
	}
}
