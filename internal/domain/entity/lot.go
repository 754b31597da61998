package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot es una partida de un producto recibida en una bodega, con fecha de vencimiento opcional.
// RemainingQuantity solo cambia a través del libro de movimientos; los lotes nunca se borran.
type Lot struct {
	ID                string
	ProductID         string
	WarehouseID       string
	ReceivedQuantity  decimal.Decimal // cantidad con la que nació el lote
	RemainingQuantity decimal.Decimal
	UnitCost          decimal.Decimal
	ReceivedDate      time.Time
	ExpiryDate        *time.Time // nil = no perecedero
	Expired           bool       // solo lo marca el barrido de vencimientos
	SourceLotID       string     // lote de origen cuando nació de un traslado
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsUsable indica si el lote puede consumirse o trasladarse.
func (l *Lot) IsUsable() bool {
	return !l.Expired && l.RemainingQuantity.IsPositive()
}

// PastExpiry indica si la fecha de vencimiento es anterior a asOf (comparando solo fechas).
func (l *Lot) PastExpiry(asOf time.Time) bool {
	if l.ExpiryDate == nil {
		return false
	}
	return DateOnly(*l.ExpiryDate).Before(DateOnly(asOf))
}

// Clone devuelve una copia independiente del lote.
func (l *Lot) Clone() *Lot {
	c := *l
	if l.ExpiryDate != nil {
		d := *l.ExpiryDate
		c.ExpiryDate = &d
	}
	return &c
}

// DateOnly trunca a medianoche UTC; las fechas de recepción y vencimiento son días calendario.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compara dos fechas opcionales (ambas nil cuenta como igual).
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return DateOnly(*a).Equal(DateOnly(*b))
}
