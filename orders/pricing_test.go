package orders

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOriginalUnitPriceRoundTrips(t *testing.T) {
	tolerance := decimal.RequireFromString("0.0000001")
	prices := []string{"0.01", "1", "8.50", "10", "129.99", "15000"}
	discounts := []string{"0", "0.05", "0.15", "0.333", "0.5", "0.99"}

	for _, ps := range prices {
		for _, ds := range discounts {
			p := decimal.RequireFromString(ps)
			d := decimal.RequireFromString(ds)
			original := OriginalUnitPrice(p, d)
			back := original.Mul(one.Sub(d))
			if back.Sub(p).Abs().GreaterThan(tolerance) {
				t.Fatalf("p=%s d=%s: original*(1-d)=%s, want %s", ps, ds, back, p)
			}
		}
	}
}

func TestOriginalUnitPriceZeroDiscountIsExact(t *testing.T) {
	p := decimal.RequireFromString("8.50")
	if got := OriginalUnitPrice(p, decimal.Zero); !got.Equal(p) {
		t.Fatalf("expected exact pass-through at d=0, got %s", got)
	}
}

func TestOriginalUnitPriceDegenerateDiscount(t *testing.T) {
	p := decimal.NewFromInt(10)
	for _, ds := range []string{"1", "1.5", "2"} {
		d := decimal.RequireFromString(ds)
		if got := OriginalUnitPrice(p, d); !got.IsZero() {
			t.Fatalf("d=%s: expected zero guard value, got %s", ds, got)
		}
	}
}

func TestTransferUnitPriceMonotoneInDiscount(t *testing.T) {
	original := decimal.RequireFromString("10.00")
	prev := TransferUnitPrice(original, decimal.Zero)
	if !prev.Equal(original) {
		t.Fatalf("t=0 should leave price unchanged, got %s", prev)
	}
	for _, ts := range []string{"0.1", "0.25", "0.5", "0.75", "1"} {
		cur := TransferUnitPrice(original, decimal.RequireFromString(ts))
		if cur.GreaterThan(prev) {
			t.Fatalf("transfer price increased at t=%s: %s > %s", ts, cur, prev)
		}
		prev = cur
	}
}
