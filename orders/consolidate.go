package orders

import "github.com/shopspring/decimal"

// LineItem is one consolidated document line. The JSON form is what a
// batch persists, so hand edits made on the review screen round-trip.
type LineItem struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	HTSCode       string          `json:"hts_code"`
	FDACode       string          `json:"fda_code"`
	Origin        string          `json:"origin"`
	UnitWeightKg  decimal.Decimal `json:"unit_weight_kg"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TransferTotal decimal.Decimal `json:"transfer_total"`
}

type groupKey struct {
	productID string
	hts       string
	weight    string
	origin    string
	fda       string
}

// Consolidate partitions priced rows by product identity plus customs
// attributes, so customs-distinct variants of similar-looking items
// never merge. Quantities and totals are summed; the group unit price
// is re-derived as total/quantity to weight multi-row groups
// correctly. First-seen name and description win. Group order follows
// first appearance in the input.
func Consolidate(rows []PricedRow) []LineItem {
	items := make([]LineItem, 0, len(rows))
	byKey := make(map[groupKey]int, len(rows))

	for _, row := range rows {
		key := groupKey{
			productID: row.ProductID,
			hts:       row.HTSCode,
			weight:    row.UnitWeightKg.String(),
			origin:    row.Origin,
			fda:       row.FDACode,
		}
		idx, ok := byKey[key]
		if !ok {
			idx = len(items)
			byKey[key] = idx
			items = append(items, LineItem{
				ProductID:    row.ProductID,
				SKU:          row.SKU,
				Name:         row.Name,
				Description:  row.Description,
				HTSCode:      row.HTSCode,
				FDACode:      row.FDACode,
				Origin:       row.Origin,
				UnitWeightKg: row.UnitWeightKg,
			})
		}
		items[idx].Quantity += row.Quantity
		items[idx].TransferTotal = items[idx].TransferTotal.Add(row.TransferTotal)
	}

	for i := range items {
		if items[i].Quantity > 0 {
			items[i].UnitPrice = items[i].TransferTotal.Div(decimal.NewFromInt(items[i].Quantity))
		} else {
			items[i].UnitPrice = decimal.Zero
		}
	}
	return items
}

// TotalValue sums the transfer totals of items without rounding.
func TotalValue(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TransferTotal)
	}
	return total
}

// TotalQuantity sums the unit quantities of items.
func TotalQuantity(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
