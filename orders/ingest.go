package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tradedocs/models"
)

// Column headers of the seller's daily order export.
const (
	colCountry  = "Ship to country"
	colItemType = "Item type"
	colSKU      = "Variant code / SKU"
	colName     = "Item variant"
	colQty      = "Quantity"
	colPrice    = "Price per unit"
	colDiscount = "Discount"
)

// Config carries the per-seller constants the ingestor needs.
type Config struct {
	TargetCountry  string
	DefaultHTSCode string
	DefaultFDACode string
	DefaultOrigin  string
}

// RawOrderRow is one unit-line of the source export, as parsed.
type RawOrderRow struct {
	ShipToCountry string
	ItemType      string
	SKU           string
	Name          string
	Quantity      int64
	UnitPrice     decimal.Decimal
	Discount      decimal.Decimal // promo fraction already baked into UnitPrice
}

// PricedRow is a retained order row enriched with catalog attributes
// and transfer pricing. Prices keep full precision; rounding happens
// at render time only.
type PricedRow struct {
	SKU               string
	ProductID         string
	Name              string
	Description       string
	HTSCode           string
	FDACode           string
	Origin            string
	UnitWeightKg      decimal.Decimal
	Quantity          int64
	UnitPrice         decimal.Decimal
	Discount          decimal.Decimal
	OriginalUnitPrice decimal.Decimal
	TransferUnitPrice decimal.Decimal
	TransferTotal     decimal.Decimal
}

// Lookup resolves a normalized SKU against the catalog.
type Lookup func(sku string) (models.CatalogItem, bool)

// SchemaError reports required export columns that are absent.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "order export missing required columns: " + strings.Join(e.Missing, ", ")
}

// ReadOrderRows parses a CSV or XLSX order export. The file type is
// chosen by filename extension; anything that is not .xlsx is read as
// CSV.
func ReadOrderRows(r io.Reader, filename string) ([]RawOrderRow, error) {
	table, err := ReadTable(r, filename)
	if err != nil {
		return nil, err
	}
	return parseOrderTable(table)
}

// ReadTable reads a tabular file into rows of cells. XLSX files (by
// extension) are read from their first sheet; everything else is CSV.
func ReadTable(r io.Reader, filename string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read xlsx rows: %w", err)
		}
		return rows, nil
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func parseOrderTable(table [][]string) ([]RawOrderRow, error) {
	if len(table) == 0 {
		return nil, &SchemaError{Missing: []string{colCountry, colSKU, colQty, colPrice}}
	}

	index := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(name string) (int, bool) {
		i, ok := index[strings.ToLower(name)]
		return i, ok
	}

	var missing []string
	for _, required := range []string{colCountry, colSKU, colQty, colPrice} {
		if _, ok := col(required); !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	field := func(record []string, name string) string {
		i, ok := col(name)
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]RawOrderRow, 0, len(table)-1)
	for _, record := range table[1:] {
		if len(record) == 0 {
			continue
		}
		qty, err := parseQuantity(field(record, colQty))
		if err != nil {
			continue
		}
		price, err := parseMoney(field(record, colPrice))
		if err != nil {
			continue
		}
		rows = append(rows, RawOrderRow{
			ShipToCountry: field(record, colCountry),
			ItemType:      field(record, colItemType),
			SKU:           field(record, colSKU),
			Name:          field(record, colName),
			Quantity:      qty,
			UnitPrice:     price,
			Discount:      parsePercent(field(record, colDiscount)),
		})
	}
	return rows, nil
}

// NormalizeSKU trims the identifier and strips the trailing ".0" that
// spreadsheet exports append to numeric SKUs.
func NormalizeSKU(raw string) string {
	sku := strings.TrimSpace(raw)
	if base, ok := strings.CutSuffix(sku, ".0"); ok && base != "" {
		digits := true
		for _, r := range base {
			if r < '0' || r > '9' {
				digits = false
				break
			}
		}
		if digits {
			return base
		}
	}
	return sku
}

// Ingest filters rows to the target market and physical products,
// joins each against the catalog, and prices it with the batch's
// transfer discount fraction.
func Ingest(rows []RawOrderRow, find Lookup, cfg Config, transferDiscount decimal.Decimal) []PricedRow {
	out := make([]PricedRow, 0, len(rows))
	for _, row := range rows {
		if !strings.EqualFold(strings.TrimSpace(row.ShipToCountry), cfg.TargetCountry) {
			continue
		}
		// Rows without an item type carry no filtering signal and are kept.
		if row.ItemType != "" && !strings.EqualFold(row.ItemType, "product") {
			continue
		}

		sku := NormalizeSKU(row.SKU)
		priced := PricedRow{
			SKU:       sku,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Discount:  row.Discount,
		}

		if entry, ok := find(sku); ok {
			priced.ProductID = entry.ExternalProductID()
			priced.Name = entry.Name
			priced.Description = entry.Description
			if priced.Description == "" {
				priced.Description = entry.Name
			}
			priced.HTSCode = entry.HTSCode
			priced.FDACode = entry.FDACode
			priced.Origin = entry.Origin
			priced.UnitWeightKg = entry.UnitWeightKg
			if entry.UnitPrice.IsPositive() {
				priced.UnitPrice = entry.UnitPrice
			}
		} else {
			priced.ProductID = sku
			priced.Name = row.Name
			priced.Description = row.Name
			priced.HTSCode = cfg.DefaultHTSCode
			priced.FDACode = cfg.DefaultFDACode
			priced.Origin = cfg.DefaultOrigin
			priced.UnitWeightKg = decimal.Zero
		}

		priced.OriginalUnitPrice = OriginalUnitPrice(priced.UnitPrice, priced.Discount)
		priced.TransferUnitPrice = TransferUnitPrice(priced.OriginalUnitPrice, transferDiscount)
		priced.TransferTotal = decimal.NewFromInt(priced.Quantity).Mul(priced.TransferUnitPrice)
		out = append(out, priced)
	}
	return out
}

func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	// Spreadsheet exports sometimes stringify quantities as floats.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f + 0.5), nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	if cleaned == "" {
		return decimal.Zero, strconv.ErrSyntax
	}
	return decimal.NewFromString(cleaned)
}

// parsePercent turns "15%" (or "15") into the fraction 0.15.
// Absent or unparsable values mean no discount.
func parsePercent(s string) decimal.Decimal {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d.Div(decimal.NewFromInt(100))
}
