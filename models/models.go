package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CatalogItem is the product master keyed by internal SKU. Customs
// attributes live here so order rows can be enriched at ingest time.
type CatalogItem struct {
	bun.BaseModel `bun:"table:catalog_items,alias:ci"`

	ID           int64           `bun:"id,pk,autoincrement"`
	SKU          string          `bun:"sku,unique,notnull"`
	Name         string          `bun:"name,notnull"`
	Description  string          `bun:"description"`
	HTSCode      string          `bun:"hts_code"`
	FDACode      string          `bun:"fda_code"`
	UnitWeightKg decimal.Decimal `bun:"unit_weight_kg,notnull,default:'0'"`
	UnitPrice    decimal.Decimal `bun:"unit_price,notnull,default:'0'"`
	Origin       string          `bun:"origin"`
	ProductID    string          `bun:"product_id"`
	CreatedAt    time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// ExternalProductID returns the customs-facing product identifier,
// falling back to the SKU when none was imported.
func (c CatalogItem) ExternalProductID() string {
	if c.ProductID != "" {
		return c.ProductID
	}
	return c.SKU
}

// Batch is one day's export run: the operator-editable state a set of
// documents is rendered from. Line items are stored as JSON so hand
// edits survive between uploads and renders.
type Batch struct {
	bun.BaseModel `bun:"table:batches,alias:b"`

	ID                  int64           `bun:"id,pk,autoincrement"`
	Reference           string          `bun:"reference,unique,notnull"`
	DocumentDate        time.Time       `bun:"document_date,notnull"`
	TransferDiscountPct decimal.Decimal `bun:"transfer_discount_pct,notnull,default:'0'"`
	Notes               string          `bun:"notes"`
	Cartons             int64           `bun:"cartons,notnull,default:0"`
	Pallets             int64           `bun:"pallets,notnull,default:0"`
	GrossWeightKg       decimal.Decimal `bun:"gross_weight_kg,notnull,default:'0'"`
	CarrierCode         string          `bun:"carrier_code"`
	LinesJSON           string          `bun:"lines_json,notnull,default:''"`
	CreatedAt           time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt           time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// Setting is a single key/value configuration row. Values are bytes so
// the signature image can live beside plain-text settings.
type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:st"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Actor      string    `bun:"actor,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
