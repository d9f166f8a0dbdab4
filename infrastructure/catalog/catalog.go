// Package catalog is the product-master store: bulk replace-by-key
// imports, full exports, and the batched lookup the ingest pipeline
// joins against.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"tradedocs/infrastructure/audit"
	"tradedocs/infrastructure/sqlite"
	"tradedocs/models"
	"tradedocs/orders"
)

// ImportSummary reports a bulk catalog import.
type ImportSummary struct {
	Inserted int
	Updated  int
	Errors   int
}

var importHeader = []string{"sku", "name", "description", "hts_code", "fda_code", "unit_weight_kg", "unit_price", "origin", "product_id"}

// List returns every catalog item ordered by SKU.
func List(ctx context.Context, db *sqlite.DB) ([]models.CatalogItem, error) {
	items := make([]models.CatalogItem, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&items).Order("sku ASC").Scan(ctx)
	})
	return items, err
}

// FetchBySKUs loads the given SKUs in one query, keyed by SKU. The
// ingest pipeline does one bulk fetch per render instead of a query
// per order row.
func FetchBySKUs(ctx context.Context, db *sqlite.DB, skus []string) (map[string]models.CatalogItem, error) {
	result := make(map[string]models.CatalogItem, len(skus))
	if len(skus) == 0 {
		return result, nil
	}
	items := make([]models.CatalogItem, 0, len(skus))
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&items).Where("sku IN (?)", bun.In(skus)).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.SKU] = item
	}
	return result, nil
}

// Lookup returns an orders.Lookup over a pre-fetched SKU map.
func Lookup(fetched map[string]models.CatalogItem) orders.Lookup {
	return func(sku string) (models.CatalogItem, bool) {
		item, ok := fetched[sku]
		return item, ok
	}
}

// ImportTable bulk-upserts catalog rows from a CSV or XLSX export.
// Rows are keyed by SKU; existing entries are replaced field by field.
// Bad rows are counted, not fatal.
func ImportTable(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, reader io.Reader, filename string) (ImportSummary, error) {
	summary := ImportSummary{}

	table, err := orders.ReadTable(reader, filename)
	if err != nil {
		return summary, err
	}
	if len(table) == 0 {
		return summary, fmt.Errorf("catalog import is empty")
	}

	index := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["sku"]; !ok {
		return summary, fmt.Errorf("invalid catalog header; expected columns %s", strings.Join(importHeader, ","))
	}
	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for _, record := range table[1:] {
			sku := orders.NormalizeSKU(field(record, "sku"))
			name := field(record, "name")
			if sku == "" || name == "" {
				summary.Errors++
				continue
			}
			weight, werr := parseDecimalField(field(record, "unit_weight_kg"))
			price, perr := parseDecimalField(field(record, "unit_price"))
			if werr != nil || perr != nil {
				summary.Errors++
				continue
			}

			var exists int
			if err := tx.NewRaw("SELECT COUNT(1) FROM catalog_items WHERE sku = ?", sku).Scan(ctx, &exists); err != nil {
				return err
			}
			if exists > 0 {
				summary.Updated++
			} else {
				summary.Inserted++
			}

			if _, err := tx.ExecContext(ctx, `
INSERT INTO catalog_items (sku, name, description, hts_code, fda_code, unit_weight_kg, unit_price, origin, product_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(sku) DO UPDATE SET
  name = excluded.name,
  description = excluded.description,
  hts_code = excluded.hts_code,
  fda_code = excluded.fda_code,
  unit_weight_kg = excluded.unit_weight_kg,
  unit_price = excluded.unit_price,
  origin = excluded.origin,
  product_id = excluded.product_id,
  updated_at = CURRENT_TIMESTAMP`,
				sku, name, field(record, "description"), field(record, "hts_code"), field(record, "fda_code"),
				weight.String(), price.String(), field(record, "origin"), field(record, "product_id")); err != nil {
				summary.Errors++
			}
		}

		if auditSvc != nil {
			after := map[string]any{"inserted": summary.Inserted, "updated": summary.Updated, "errors": summary.Errors}
			return auditSvc.Write(ctx, tx, actor, "catalog.import", "catalog_items", "bulk", nil, after)
		}
		return nil
	})
	return summary, err
}

func parseDecimalField(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// ExportCSV writes the full catalog in the import format, usable as a
// backup and re-importable as-is.
func ExportCSV(ctx context.Context, db *sqlite.DB) ([]byte, error) {
	items, err := List(ctx, db)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	writer := csv.NewWriter(&out)
	if err := writer.Write(importHeader); err != nil {
		return nil, err
	}
	for _, item := range items {
		record := []string{
			item.SKU, item.Name, item.Description, item.HTSCode, item.FDACode,
			item.UnitWeightKg.String(), item.UnitPrice.String(), item.Origin, item.ProductID,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Delete removes catalog items by id and audits each removal.
func Delete(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, ids []int64) (deleted int, err error) {
	if len(ids) == 0 {
		return 0, nil
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for _, id := range ids {
			if id <= 0 {
				continue
			}
			var before models.CatalogItem
			if err := tx.NewSelect().Model(&before).Where("id = ?", id).Scan(ctx); err != nil {
				continue
			}
			res, err := tx.ExecContext(ctx, `DELETE FROM catalog_items WHERE id = ?`, id)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				deleted++
				if auditSvc != nil {
					if err := auditSvc.Write(ctx, tx, actor, "catalog.delete", "catalog_items", before.SKU, before, nil); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
