package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
)

// AdjustmentRequest corrección de la cantidad de un lote sujeta a doble control:
// quien aprueba no puede ser quien la creó.
type AdjustmentRequest struct {
	ID              string
	LotID           string
	QuantityBefore  decimal.Decimal // existencia del lote al crear la solicitud
	QuantityAfter   decimal.Decimal
	AppliedDelta    decimal.Decimal // calculado contra la existencia real al aprobar
	Reason          string
	Status          RequestStatus
	CreatedBy       string
	ApprovedBy      string
	RejectedBy      string
	ResolutionNotes string
	RejectionReason string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

// Approve valida doble control y pasa a APPROVED con el delta aplicado.
func (a *AdjustmentRequest) Approve(by, notes string, delta decimal.Decimal, at time.Time) error {
	if err := a.CanApprove(by); err != nil {
		return err
	}
	a.Status = StatusApproved
	a.ApprovedBy = by
	a.ResolutionNotes = notes
	a.AppliedDelta = delta
	a.ResolvedAt = &at
	return nil
}

// CanApprove verifica estado y doble control sin modificar la solicitud.
func (a *AdjustmentRequest) CanApprove(by string) error {
	if a.Status != StatusPending {
		return domain.ErrInvalidStateTransition
	}
	if by == "" || by == a.CreatedBy {
		return domain.ErrSelfApprovalForbidden
	}
	return nil
}

// Reject pasa a REJECTED. Rechazar no exige doble control.
func (a *AdjustmentRequest) Reject(by, reason string, at time.Time) error {
	if a.Status != StatusPending {
		return domain.ErrInvalidStateTransition
	}
	a.Status = StatusRejected
	a.RejectedBy = by
	a.RejectionReason = reason
	a.ResolvedAt = &at
	return nil
}

// Clone devuelve una copia independiente.
func (a *AdjustmentRequest) Clone() *AdjustmentRequest {
	c := *a
	if a.ResolvedAt != nil {
		r := *a.ResolvedAt
		c.ResolvedAt = &r
	}
	return &c
}
