package dto

import (
	"github.com/shopspring/decimal"
)

// SweepRequest fecha de corte opcional para el barrido (vacío = hoy).
type SweepRequest struct {
	AsOf string `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SweepResponse resultado del barrido de vencimientos.
type SweepResponse struct {
	AsOf          string   `json:"as_of"`
	Flagged       int      `json:"flagged"`
	LotIDs        []string `json:"lot_ids"`
	TransactionID string   `json:"transaction_id,omitempty"`
}

// ExpiryReportRequest filtros del reporte de caducidad.
type ExpiryReportRequest struct {
	ProductID   string `query:"product_id" validate:"max=64"`
	WarehouseID string `query:"warehouse_id" validate:"max=64"`
	Days        int    `query:"days" validate:"min=0,max=365"` // 0 = ventana configurada
	AsOf        string `query:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

// ExpiryReportRow lote con fecha de vencimiento y su clasificación.
type ExpiryReportRow struct {
	LotID             string          `json:"lot_id"`
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	ExpiryDate        string          `json:"expiry_date"`
	DaysToExpiry      int             `json:"days_to_expiry"`
	Status            string          `json:"status"` // EXPIRED | EXPIRING_SOON | OK
	IsExpired         bool            `json:"is_expired"`
}

// StockSummaryRequest filtros del resumen de existencias.
type StockSummaryRequest struct {
	ProductID   string `query:"product_id" validate:"max=64"`
	WarehouseID string `query:"warehouse_id" validate:"max=64"`
}

// StockSummaryRow existencia utilizable por producto y bodega.
type StockSummaryRow struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	UsableQuantity  decimal.Decimal `json:"usable_quantity"`
	ExpiredQuantity decimal.Decimal `json:"expired_quantity"`
	LotCount        int             `json:"lot_count"`
	SoonestExpiry   *string         `json:"soonest_expiry"`
	DaysToExpiry    *int            `json:"days_to_expiry"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}

// ReconciliationResponse compara la existencia del lote contra la suma del libro.
type ReconciliationResponse struct {
	LotID             string          `json:"lot_id"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	LedgerSum         decimal.Decimal `json:"ledger_sum"`
	Consistent        bool            `json:"consistent"`
}
