package batches

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary reports what an order ingest produced.
type Summary struct {
	SourceRows    int
	RetainedRows  int
	LineItems     int
	TotalQuantity int64
	TotalValue    decimal.Decimal
}

// UpdateParams carries the operator-editable batch fields.
type UpdateParams struct {
	Reference           string
	DocumentDate        time.Time
	TransferDiscountPct decimal.Decimal
	Notes               string
	Cartons             int64
	Pallets             int64
	GrossWeightKg       decimal.Decimal
	CarrierCode         string
	LinesJSON           string
}
