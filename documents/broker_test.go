package documents

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradedocs/orders"
)

func TestEstimatedArrival(t *testing.T) {
	cases := []struct {
		ship string
		want string
	}{
		{"2026-01-05", "2026-01-06"}, // Monday -> Tuesday
		{"2026-01-08", "2026-01-09"}, // Thursday -> Friday
		{"2026-01-09", "2026-01-12"}, // Friday -> Monday
		{"2026-01-10", "2026-01-12"}, // Saturday -> Monday
		{"2026-01-11", "2026-01-12"}, // Sunday -> Monday
	}
	for _, tc := range cases {
		ship, err := time.Parse("2006-01-02", tc.ship)
		if err != nil {
			t.Fatalf("parse fixture: %v", err)
		}
		if got := EstimatedArrival(ship).Format("2006-01-02"); got != tc.want {
			t.Fatalf("EstimatedArrival(%s) = %s, want %s", tc.ship, got, tc.want)
		}
	}
}

func TestRenderBrokerCSVSkipsItemsWithoutFDACode(t *testing.T) {
	doc := testDocument()
	doc.Items = []orders.LineItem{
		{SKU: "HR-100", Description: "Espresso Blend", FDACode: "30BEC07", Quantity: 2, TransferTotal: decimal.NewFromInt(10)},
		{SKU: "HR-200", Description: "Branded Mug", FDACode: "", Quantity: 1, TransferTotal: decimal.NewFromInt(5)},
	}

	out, err := RenderBrokerCSV(doc, testBroker())
	if err != nil {
		t.Fatalf("render broker csv: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 { // header + one row
		t.Fatalf("expected 1 data row, got %d", len(records)-1)
	}
	if records[1][7] != "HR-100" {
		t.Fatalf("expected HR-100 row, got %q", records[1][7])
	}
}

func TestRenderBrokerCSVConsigneeAndArrival(t *testing.T) {
	doc := testDocument()
	doc.Date = time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC) // Friday
	doc.Items = []orders.LineItem{
		{SKU: "HR-100", Description: "Espresso Blend", FDACode: "30BEC07", Quantity: 2, TransferTotal: decimal.NewFromInt(10)},
	}

	out, err := RenderBrokerCSV(doc, testBroker())
	if err != nil {
		t.Fatalf("render broker csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	row := records[1]
	if row[2] != "Holistic Roasters USA" || row[4] != "New York" || row[5] != "NY" {
		t.Fatalf("unexpected consignee fields: %v", row[2:7])
	}
	if row[14] != "2026-01-12" {
		t.Fatalf("expected Monday arrival for Friday shipment, got %q", row[14])
	}
	if row[15] != "FEDX" {
		t.Fatalf("expected carrier from config, got %q", row[15])
	}
}
