package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
)

// TransferRequest solicitud para mover cantidad de un lote a otra bodega.
// El stock solo se mueve al aprobar.
type TransferRequest struct {
	ID               string
	LotID            string
	FromWarehouseID  string // copia de la bodega del lote al momento de solicitar
	ToWarehouseID    string
	Quantity         decimal.Decimal
	Status           RequestStatus
	Notes            string
	RequestedBy      string
	ResolvedBy       string
	ResolutionNotes  string
	RejectionReason  string
	DestinationLotID string
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}

// Approve pasa la solicitud a APPROVED registrando el lote destino.
func (t *TransferRequest) Approve(by, notes, destinationLotID string, at time.Time) error {
	if t.Status != StatusPending {
		return domain.ErrInvalidStateTransition
	}
	t.Status = StatusApproved
	t.ResolvedBy = by
	t.ResolutionNotes = notes
	t.DestinationLotID = destinationLotID
	t.ResolvedAt = &at
	return nil
}

// Reject pasa la solicitud a REJECTED sin efecto sobre el stock.
func (t *TransferRequest) Reject(by, reason string, at time.Time) error {
	if t.Status != StatusPending {
		return domain.ErrInvalidStateTransition
	}
	t.Status = StatusRejected
	t.ResolvedBy = by
	t.RejectionReason = reason
	t.ResolvedAt = &at
	return nil
}

// Clone devuelve una copia independiente.
func (t *TransferRequest) Clone() *TransferRequest {
	c := *t
	if t.ResolvedAt != nil {
		r := *t.ResolvedAt
		c.ResolvedAt = &r
	}
	return &c
}
