package settings

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"tradedocs/infrastructure/sqlite"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestGetUnsetKeyIsEmpty(t *testing.T) {
	db := openTestDB(t)

	value, err := Get(context.Background(), db, KeyCarrierCode)
	if err != nil {
		t.Fatalf("get unset key: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty value, got %q", value)
	}
}

func TestSetOverwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := Set(ctx, db, KeyCarrierCode, []byte("FEDX")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := Set(ctx, db, KeyCarrierCode, []byte("UPSN")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, err := Get(ctx, db, KeyCarrierCode)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "UPSN" {
		t.Fatalf("expected UPSN, got %q", value)
	}
}

func TestBinaryValueRoundTrips(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}
	if err := Set(ctx, db, KeySignaturePNG, payload); err != nil {
		t.Fatalf("set signature: %v", err)
	}

	stored, err := GetBytes(ctx, db, KeySignaturePNG)
	if err != nil {
		t.Fatalf("get signature: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatalf("signature bytes corrupted: %v", stored)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cfg, err := Load(ctx, db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetCountry != "United States" {
		t.Fatalf("expected default target country, got %q", cfg.TargetCountry)
	}
	if cfg.DefaultHTS != "0901.21.0035" || cfg.DefaultFDA != "30BEC07" || cfg.DefaultOrigin != "CA" {
		t.Fatalf("unexpected default codes: %+v", cfg)
	}
	if cfg.CarrierCode != "" {
		t.Fatalf("carrier code has no default, got %q", cfg.CarrierCode)
	}

	if err := SetAll(ctx, db, map[string][]byte{
		KeyTargetCountry: []byte("Canada"),
		KeyCarrierCode:   []byte("FEDX"),
	}); err != nil {
		t.Fatalf("set all: %v", err)
	}

	cfg, err = Load(ctx, db)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.TargetCountry != "Canada" || cfg.CarrierCode != "FEDX" {
		t.Fatalf("stored values must win over defaults: %+v", cfg)
	}
}
