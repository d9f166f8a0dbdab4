package orders

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestConsolidateScenarioA(t *testing.T) {
	// Two rows of the same product, qty 3 and 5 at $10, 0% promo, 50%
	// transfer discount: one line, qty 8, unit $5.00, total $40.00.
	rows := []RawOrderRow{
		{ShipToCountry: "United States", SKU: "HR-100", Quantity: 3, UnitPrice: decimal.NewFromInt(10)},
		{ShipToCountry: "United States", SKU: "HR-100", Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
	}
	priced := Ingest(rows, noCatalog, testConfig, decimal.RequireFromString("0.5"))
	items := Consolidate(priced)

	if len(items) != 1 {
		t.Fatalf("expected 1 consolidated line, got %d", len(items))
	}
	if items[0].Quantity != 8 {
		t.Fatalf("expected quantity 8, got %d", items[0].Quantity)
	}
	if !items[0].UnitPrice.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected unit price 5, got %s", items[0].UnitPrice)
	}
	if !items[0].TransferTotal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected total 40, got %s", items[0].TransferTotal)
	}
}

func TestConsolidateConservesTotals(t *testing.T) {
	rows := []PricedRow{
		{ProductID: "A", HTSCode: "1", Origin: "CA", Quantity: 3, TransferTotal: decimal.RequireFromString("10.123456")},
		{ProductID: "A", HTSCode: "1", Origin: "CA", Quantity: 2, TransferTotal: decimal.RequireFromString("6.654321")},
		{ProductID: "B", HTSCode: "2", Origin: "CA", Quantity: 7, TransferTotal: decimal.RequireFromString("99.999999")},
	}

	items := Consolidate(rows)

	wantTotal := decimal.Zero
	var wantQty int64
	for _, r := range rows {
		wantTotal = wantTotal.Add(r.TransferTotal)
		wantQty += r.Quantity
	}
	if !TotalValue(items).Equal(wantTotal) {
		t.Fatalf("value not conserved: got %s, want %s", TotalValue(items), wantTotal)
	}
	if TotalQuantity(items) != wantQty {
		t.Fatalf("quantity not conserved: got %d, want %d", TotalQuantity(items), wantQty)
	}
}

func TestConsolidateIsPartition(t *testing.T) {
	rows := []PricedRow{
		{ProductID: "A", HTSCode: "1", Quantity: 1, TransferTotal: decimal.NewFromInt(1)},
		{ProductID: "A", HTSCode: "1", Quantity: 1, TransferTotal: decimal.NewFromInt(1)},
		{ProductID: "A", HTSCode: "2", Quantity: 1, TransferTotal: decimal.NewFromInt(1)},
		{ProductID: "B", HTSCode: "1", Quantity: 1, TransferTotal: decimal.NewFromInt(1)},
	}
	items := Consolidate(rows)
	if len(items) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(items))
	}
	if TotalQuantity(items) != int64(len(rows)) {
		t.Fatalf("every row must land in exactly one group; got total qty %d", TotalQuantity(items))
	}
}

func TestConsolidateKeepsCustomsDistinctVariantsApart(t *testing.T) {
	rows := []PricedRow{
		{ProductID: "A", Name: "Blend 1kg", HTSCode: "0901.21.0035", Origin: "CA", UnitWeightKg: decimal.NewFromInt(1), Quantity: 1, TransferTotal: decimal.NewFromInt(5)},
		{ProductID: "A", Name: "Blend 1kg", HTSCode: "0901.21.0035", Origin: "CO", UnitWeightKg: decimal.NewFromInt(1), Quantity: 1, TransferTotal: decimal.NewFromInt(5)},
	}
	items := Consolidate(rows)
	if len(items) != 2 {
		t.Fatalf("same name but different origin must not merge; got %d groups", len(items))
	}
}

func TestConsolidateWeightsUnitPriceByQuantity(t *testing.T) {
	// A straight average of the unit prices would give 2.5; the
	// quantity-weighted derivation gives 21/8 = 2.625.
	rows := []PricedRow{
		{ProductID: "A", Quantity: 3, TransferUnitPrice: decimal.NewFromInt(2), TransferTotal: decimal.NewFromInt(6)},
		{ProductID: "A", Quantity: 5, TransferUnitPrice: decimal.NewFromInt(3), TransferTotal: decimal.NewFromInt(15)},
	}
	items := Consolidate(rows)
	if len(items) != 1 {
		t.Fatalf("expected 1 group, got %d", len(items))
	}
	if !items[0].UnitPrice.Equal(decimal.RequireFromString("2.625")) {
		t.Fatalf("expected weighted unit price 2.625, got %s", items[0].UnitPrice)
	}
}
