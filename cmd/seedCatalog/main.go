// Command seedCatalog prepares a fresh install: it applies migrations,
// sets the operator password, and optionally imports an initial
// catalog file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"tradedocs/frontend/login"
	"tradedocs/infrastructure/argon"
	cataloginfra "tradedocs/infrastructure/catalog"
	"tradedocs/infrastructure/settings"
	"tradedocs/infrastructure/sqlite"
)

func main() {
	dbPath := getenv("SQLITE_PATH", "tradedocs.db")

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	password := getenv("OPERATOR_PASSWORD", "Operator123!Tradedocs")
	if err := login.ValidatePasswordPolicy(password); err != nil {
		log.Fatalf("operator password: %v", err)
	}
	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		log.Fatalf("hash operator password: %v", err)
	}
	if err := settings.Set(ctx, db, settings.KeyOperatorHash, []byte(hash)); err != nil {
		log.Fatalf("store operator password: %v", err)
	}
	fmt.Println("operator password set")

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		return
	}
	file, err := os.Open(catalogPath)
	if err != nil {
		log.Fatalf("open catalog file: %v", err)
	}
	defer file.Close()

	summary, err := cataloginfra.ImportTable(ctx, db, nil, "seed", file, catalogPath)
	if err != nil {
		log.Fatalf("import catalog: %v", err)
	}
	fmt.Printf("seeded catalog: %d inserted, %d updated, %d errors\n", summary.Inserted, summary.Updated, summary.Errors)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
