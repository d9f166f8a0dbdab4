package batches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"tradedocs/documents"
	"tradedocs/infrastructure/audit"
	cataloginfra "tradedocs/infrastructure/catalog"
	settingsstore "tradedocs/infrastructure/settings"
	"tradedocs/infrastructure/sqlite"
	"tradedocs/models"
	"tradedocs/orders"
)

// CreateFromOrderFile ingests an uploaded order export into a new
// batch. Fields the form leaves blank are inherited from the most
// recent batch: the transfer discount, notes, carton and pallet
// counts, gross weight and carrier code. Line items and the reference
// are always fresh.
func CreateFromOrderFile(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, file io.Reader, filename, reference string, documentDate time.Time, discountRaw string) (models.Batch, Summary, error) {
	var batch models.Batch
	summary := Summary{}

	cfg, err := settingsstore.Load(ctx, db)
	if err != nil {
		return batch, summary, err
	}

	rows, err := orders.ReadOrderRows(file, filename)
	if err != nil {
		return batch, summary, err
	}
	summary.SourceRows = len(rows)

	skus := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		sku := orders.NormalizeSKU(row.SKU)
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true
		skus = append(skus, sku)
	}
	fetched, err := cataloginfra.FetchBySKUs(ctx, db, skus)
	if err != nil {
		return batch, summary, err
	}

	previous, hasPrevious := latestBatch(ctx, db)

	discount, err := resolveDiscount(discountRaw, previous, hasPrevious)
	if err != nil {
		return batch, summary, err
	}

	priced := orders.Ingest(rows, cataloginfra.Lookup(fetched), orders.Config{
		TargetCountry:  cfg.TargetCountry,
		DefaultHTSCode: cfg.DefaultHTS,
		DefaultFDACode: cfg.DefaultFDA,
		DefaultOrigin:  cfg.DefaultOrigin,
	}, discount)
	summary.RetainedRows = len(priced)

	items := orders.Consolidate(priced)
	summary.LineItems = len(items)
	summary.TotalQuantity = orders.TotalQuantity(items)
	summary.TotalValue = orders.TotalValue(items)

	linesJSON, err := json.Marshal(items)
	if err != nil {
		return batch, summary, err
	}

	if strings.TrimSpace(reference) == "" {
		reference = "EXP-" + time.Now().Format("20060102-150405")
	}

	batch = models.Batch{
		Reference:           strings.TrimSpace(reference),
		DocumentDate:        documentDate,
		TransferDiscountPct: discount,
		LinesJSON:           string(linesJSON),
		CreatedAt:           time.Now().UTC(),
		UpdatedAt:           time.Now().UTC(),
	}
	if hasPrevious {
		batch.Notes = previous.Notes
		batch.Cartons = previous.Cartons
		batch.Pallets = previous.Pallets
		batch.GrossWeightKg = previous.GrossWeightKg
		batch.CarrierCode = previous.CarrierCode
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return err
		}
		after := map[string]any{
			"reference":      batch.Reference,
			"line_items":     summary.LineItems,
			"total_quantity": summary.TotalQuantity,
			"total_value":    summary.TotalValue.StringFixed(2),
		}
		return auditSvc.Write(ctx, tx, actor, "batch.create", "batches", batch.Reference, nil, after)
	})
	if err != nil {
		return models.Batch{}, summary, err
	}
	return batch, summary, nil
}

// resolveDiscount parses the form value, falling back to the previous
// batch's discount. Values above 1 are read as percentages.
func resolveDiscount(raw string, previous models.Batch, hasPrevious bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		if hasPrevious {
			return previous.TransferDiscountPct, nil
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid transfer discount %q", raw)
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(decimal.NewFromInt(100))
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("transfer discount %q out of range", raw)
	}
	return d, nil
}

func latestBatch(ctx context.Context, db *sqlite.DB) (models.Batch, bool) {
	var previous models.Batch
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&previous).Order("id DESC").Limit(1).Scan(ctx)
	})
	if err != nil {
		return models.Batch{}, false
	}
	return previous, true
}

// ListBatches returns batches, newest document date first.
func ListBatches(ctx context.Context, db *sqlite.DB) ([]models.Batch, error) {
	list := make([]models.Batch, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&list).Order("document_date DESC").Order("id DESC").Scan(ctx)
	})
	return list, err
}

// LoadByID returns one batch.
func LoadByID(ctx context.Context, db *sqlite.DB, id int64) (models.Batch, error) {
	var batch models.Batch
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&batch).Where("id = ?", id).Scan(ctx)
	})
	return batch, err
}

// UpdateBatch saves operator edits. The lines JSON must decode to a
// line item slice or the update is rejected whole.
func UpdateBatch(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, id int64, params UpdateParams) error {
	items, err := DecodeLines(params.LinesJSON)
	if err != nil {
		return fmt.Errorf("invalid line items: %w", err)
	}
	normalized, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Batch
		if err := tx.NewSelect().Model(&before).Where("id = ?", id).Scan(ctx); err != nil {
			return err
		}

		after := before
		after.Reference = strings.TrimSpace(params.Reference)
		after.DocumentDate = params.DocumentDate
		after.TransferDiscountPct = params.TransferDiscountPct
		after.Notes = params.Notes
		after.Cartons = params.Cartons
		after.Pallets = params.Pallets
		after.GrossWeightKg = params.GrossWeightKg
		after.CarrierCode = strings.TrimSpace(params.CarrierCode)
		after.LinesJSON = string(normalized)
		after.UpdatedAt = time.Now().UTC()
		if after.Reference == "" {
			return errors.New("reference is required")
		}

		if _, err := tx.NewUpdate().Model(&after).
			Column("reference", "document_date", "transfer_discount_pct", "notes", "cartons", "pallets", "gross_weight_kg", "carrier_code", "lines_json", "updated_at").
			Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, actor, "batch.update", "batches", after.Reference, before, after)
	})
}

// DeleteBatch removes a batch and audits the removal.
func DeleteBatch(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Batch
		if err := tx.NewSelect().Model(&before).Where("id = ?", id).Scan(ctx); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id); err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, actor, "batch.delete", "batches", before.Reference, before, nil)
	})
}

// RecordRender audits a document download. Render failures are not
// recorded and a failed audit write never blocks the download.
func RecordRender(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, batch models.Batch, output string) {
	_ = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return auditSvc.Write(ctx, tx, actor, "batch.render", "batches", batch.Reference, nil, map[string]any{"output": output})
	})
}

// DecodeLines parses a stored or operator-edited line item JSON array.
func DecodeLines(linesJSON string) ([]orders.LineItem, error) {
	if strings.TrimSpace(linesJSON) == "" {
		return []orders.LineItem{}, nil
	}
	var items []orders.LineItem
	if err := json.Unmarshal([]byte(linesJSON), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// BuildDocument assembles the render input for one batch and variant.
func BuildDocument(batch models.Batch, cfg settingsstore.RenderSettings, variant documents.Variant) (documents.Document, error) {
	items, err := DecodeLines(batch.LinesJSON)
	if err != nil {
		return documents.Document{}, err
	}
	carrier := batch.CarrierCode
	if carrier == "" {
		carrier = cfg.CarrierCode
	}
	return documents.Document{
		Variant:       variant,
		Reference:     batch.Reference,
		Date:          batch.DocumentDate,
		Currency:      "USD",
		CompanyName:   cfg.CompanyName,
		Exporter:      cfg.ExporterAddress,
		Consignee:     cfg.ConsigneeAddress,
		BillTo:        cfg.BillToAddress,
		Notes:         batch.Notes,
		Items:         items,
		Cartons:       batch.Cartons,
		Pallets:       batch.Pallets,
		GrossWeightKg: batch.GrossWeightKg,
		CarrierCode:   carrier,
		SignatoryName: cfg.SignatoryName,
		SignaturePNG:  cfg.SignaturePNG,
	}, nil
}

// BrokerConfigFrom maps settings to the clearance CSV shipper fields.
func BrokerConfigFrom(cfg settingsstore.RenderSettings) documents.BrokerConfig {
	return documents.BrokerConfig{
		ShipperName:    cfg.ShipperName,
		ShipperAddress: cfg.ShipperAddress,
		CarrierCode:    cfg.CarrierCode,
	}
}
