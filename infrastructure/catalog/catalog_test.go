package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"tradedocs/infrastructure/audit"
	"tradedocs/infrastructure/sqlite"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog-test.db")
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

const sampleCatalog = `sku,name,description,hts_code,fda_code,unit_weight_kg,unit_price,origin,product_id
HR-100,Espresso Blend 340g,Whole bean espresso,0901.21.0035,30BEC07,0.34,12.50,CA,4411001
HR-200,Ceramic Mug,Stoneware mug,6912.00.4810,,0.42,9.00,CA,4411002
`

func importSample(t *testing.T, db *sqlite.DB, csv string) ImportSummary {
	t.Helper()
	summary, err := ImportTable(context.Background(), db, audit.NewService(), "test", strings.NewReader(csv), "catalog.csv")
	if err != nil {
		t.Fatalf("import catalog: %v", err)
	}
	return summary
}

func TestImportTableInsertsAndUpdates(t *testing.T) {
	db := openTestDB(t)

	summary := importSample(t, db, sampleCatalog)
	if summary.Inserted != 2 || summary.Updated != 0 || summary.Errors != 0 {
		t.Fatalf("unexpected first import summary: %+v", summary)
	}

	reimport := strings.Replace(sampleCatalog, "12.50", "13.75", 1)
	summary = importSample(t, db, reimport)
	if summary.Inserted != 0 || summary.Updated != 2 {
		t.Fatalf("unexpected reimport summary: %+v", summary)
	}

	items, err := List(context.Background(), db)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items after reimport, got %d", len(items))
	}
	if items[0].SKU != "HR-100" || items[0].UnitPrice.String() != "13.75" {
		t.Fatalf("reimport did not replace fields: %s %s", items[0].SKU, items[0].UnitPrice)
	}
}

func TestImportTableCountsBadRows(t *testing.T) {
	db := openTestDB(t)

	csv := `sku,name,unit_weight_kg,unit_price
HR-100,Espresso Blend 340g,0.34,12.50
,Missing SKU,0.10,1.00
HR-300,Bad Weight,not-a-number,2.00
`
	summary := importSample(t, db, csv)
	if summary.Inserted != 1 || summary.Errors != 2 {
		t.Fatalf("unexpected summary for bad rows: %+v", summary)
	}
}

func TestImportTableRejectsMissingSKUColumn(t *testing.T) {
	db := openTestDB(t)

	_, err := ImportTable(context.Background(), db, nil, "test", strings.NewReader("name,price\nFoo,1\n"), "catalog.csv")
	if err == nil || !strings.Contains(err.Error(), "invalid catalog header") {
		t.Fatalf("expected header error, got: %v", err)
	}
}

func TestFetchBySKUsAndLookup(t *testing.T) {
	db := openTestDB(t)
	importSample(t, db, sampleCatalog)

	fetched, err := FetchBySKUs(context.Background(), db, []string{"HR-100", "HR-999"})
	if err != nil {
		t.Fatalf("fetch by skus: %v", err)
	}
	if len(fetched) != 1 {
		t.Fatalf("expected 1 fetched item, got %d", len(fetched))
	}

	find := Lookup(fetched)
	if item, ok := find("HR-100"); !ok || item.ExternalProductID() != "4411001" {
		t.Fatalf("lookup miss for HR-100: %+v ok=%v", item, ok)
	}
	if _, ok := find("HR-999"); ok {
		t.Fatalf("lookup must miss unknown sku")
	}
}

func TestExportCSVRoundTrips(t *testing.T) {
	db := openTestDB(t)
	importSample(t, db, sampleCatalog)

	data, err := ExportCSV(context.Background(), db)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "sku,name,description,hts_code,fda_code,unit_weight_kg,unit_price,origin,product_id") {
		t.Fatalf("export header mismatch: %s", out)
	}
	if !strings.Contains(out, "HR-100") || !strings.Contains(out, "HR-200") {
		t.Fatalf("export missing rows: %s", out)
	}

	fresh := openTestDB(t)
	summary, err := ImportTable(context.Background(), fresh, nil, "test", strings.NewReader(out), "export.csv")
	if err != nil {
		t.Fatalf("reimport export: %v", err)
	}
	if summary.Inserted != 2 || summary.Errors != 0 {
		t.Fatalf("export is not reimportable: %+v", summary)
	}
}

func TestDeleteRemovesAndAudits(t *testing.T) {
	db := openTestDB(t)
	importSample(t, db, sampleCatalog)

	items, err := List(context.Background(), db)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}

	deleted, err := Delete(context.Background(), db, audit.NewService(), "test", []int64{items[0].ID, 9999})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	remaining, err := List(context.Background(), db)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(remaining) != 1 || remaining[0].SKU != "HR-200" {
		t.Fatalf("unexpected remaining catalog: %+v", remaining)
	}
}
