package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType categoría de un cambio de cantidad en un lote.
type MovementType string

// Tipos de movimiento del libro.
const (
	MovementIntake      MovementType = "INTAKE"       // ingreso por donación o compra
	MovementConsumption MovementType = "CONSUMPTION"  // salida a cocina, área o beneficiario
	MovementTransferOut MovementType = "TRANSFER_OUT" // salida del lote origen de un traslado
	MovementTransferIn  MovementType = "TRANSFER_IN"  // entrada al lote destino de un traslado
	MovementAdjustment  MovementType = "ADJUSTMENT"   // corrección aprobada
	MovementExpiry      MovementType = "EXPIRY"       // marca de vencimiento, delta 0
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIntake, MovementConsumption, MovementTransferOut,
		MovementTransferIn, MovementAdjustment, MovementExpiry:
		return true
	}
	return false
}

// Movement registro inmutable de un cambio de cantidad en un lote.
// Delta es con signo: positivo entra, negativo sale.
type Movement struct {
	ID                    string
	TransactionID         string // agrupa los movimientos de una misma operación atómica
	LotID                 string
	Type                  MovementType
	Delta                 decimal.Decimal
	Notes                 string
	RequestingDepartment  string
	RecipientOrganization string
	ReferenceID           string
	CreatedBy             string
	CreatedAt             time.Time
}
