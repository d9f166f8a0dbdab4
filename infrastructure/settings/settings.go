// Package settings is the key/value configuration store behind the
// settings screen: company and party addresses, default customs codes,
// broker identifiers, the signature image, and the operator credential.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"tradedocs/infrastructure/audit"
	"tradedocs/infrastructure/sqlite"
	"tradedocs/models"
)

const (
	KeyCompanyName      = "company.name"
	KeyExporterAddress  = "address.exporter"
	KeyConsigneeAddress = "address.consignee"
	KeyBillToAddress    = "address.billto"
	KeyTargetCountry    = "default.target_country"
	KeyDefaultHTS       = "default.hts_code"
	KeyDefaultFDA       = "default.fda_code"
	KeyDefaultOrigin    = "default.origin"
	KeyCarrierCode      = "broker.carrier_code"
	KeyShipperName      = "broker.shipper_name"
	KeyShipperAddress   = "broker.shipper_address"
	KeySignatoryName    = "signature.name"
	KeySignaturePNG     = "signature.png"
	KeyOperatorHash     = "operator.password_hash"
)

// Get returns the value for key, or "" when the key is unset.
func Get(ctx context.Context, db *sqlite.DB, key string) (string, error) {
	b, err := GetBytes(ctx, db, key)
	return string(b), err
}

// GetBytes returns the raw value for key, or nil when unset.
func GetBytes(ctx context.Context, db *sqlite.DB, key string) ([]byte, error) {
	var setting models.Setting
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&setting).Where("key = ?", key).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return setting.Value, nil
}

// Set upserts a single key.
func Set(ctx context.Context, db *sqlite.DB, key string, value []byte) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return setTx(ctx, tx, key, value)
	})
}

// SetAll upserts several keys in one transaction.
func SetAll(ctx context.Context, db *sqlite.DB, values map[string][]byte) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for key, value := range values {
			if err := setTx(ctx, tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveAll upserts several keys and audits the change as one action.
// Binary values (the signature image) are audited by size only.
func SaveAll(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actor string, values map[string][]byte) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		after := make(map[string]string, len(values))
		for key, value := range values {
			if err := setTx(ctx, tx, key, value); err != nil {
				return err
			}
			if key == KeySignaturePNG || key == KeyOperatorHash {
				after[key] = fmt.Sprintf("(%d bytes)", len(value))
				continue
			}
			after[key] = string(value)
		}
		if auditSvc == nil {
			return nil
		}
		return auditSvc.Write(ctx, tx, actor, "settings.update", "settings", "global", nil, after)
	})
}

func setTx(ctx context.Context, tx bun.Tx, key string, value []byte) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// RenderSettings is everything document rendering and order ingest
// read from the store, with defaults applied for unset keys.
type RenderSettings struct {
	CompanyName      string
	ExporterAddress  string
	ConsigneeAddress string
	BillToAddress    string
	TargetCountry    string
	DefaultHTS       string
	DefaultFDA       string
	DefaultOrigin    string
	CarrierCode      string
	ShipperName      string
	ShipperAddress   string
	SignatoryName    string
	SignaturePNG     []byte
}

var defaults = map[string]string{
	KeyCompanyName:   "Holistic Roasters Inc.",
	KeyTargetCountry: "United States",
	KeyDefaultHTS:    "0901.21.0035",
	KeyDefaultFDA:    "30BEC07",
	KeyDefaultOrigin: "CA",
}

// Load reads the full render configuration in one transaction.
func Load(ctx context.Context, db *sqlite.DB) (RenderSettings, error) {
	stored := make(map[string][]byte)
	settingsList := make([]models.Setting, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&settingsList).Scan(ctx)
	})
	if err != nil {
		return RenderSettings{}, err
	}
	for _, s := range settingsList {
		stored[s.Key] = s.Value
	}

	get := func(key string) string {
		if v, ok := stored[key]; ok && len(v) > 0 {
			return string(v)
		}
		return defaults[key]
	}

	return RenderSettings{
		CompanyName:      get(KeyCompanyName),
		ExporterAddress:  get(KeyExporterAddress),
		ConsigneeAddress: get(KeyConsigneeAddress),
		BillToAddress:    get(KeyBillToAddress),
		TargetCountry:    get(KeyTargetCountry),
		DefaultHTS:       get(KeyDefaultHTS),
		DefaultFDA:       get(KeyDefaultFDA),
		DefaultOrigin:    get(KeyDefaultOrigin),
		CarrierCode:      get(KeyCarrierCode),
		ShipperName:      get(KeyShipperName),
		ShipperAddress:   get(KeyShipperAddress),
		SignatoryName:    get(KeySignatoryName),
		SignaturePNG:     stored[KeySignaturePNG],
	}, nil
}
