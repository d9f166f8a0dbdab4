package orders

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// OriginalUnitPrice back-calculates the pre-discount unit price from a
// selling price p that already has the promo fraction d applied:
// p / (1 - d). A discount of 100% or more yields zero rather than a
// division blow-up; upstream data should never produce it.
func OriginalUnitPrice(p, d decimal.Decimal) decimal.Decimal {
	if d.GreaterThanOrEqual(one) {
		return decimal.Zero
	}
	if d.IsZero() {
		return p
	}
	return p.Div(one.Sub(d))
}

// TransferUnitPrice applies the inter-company transfer discount
// fraction t to the original unit price.
func TransferUnitPrice(original, t decimal.Decimal) decimal.Decimal {
	return original.Mul(one.Sub(t))
}
