// CLI tool to apply pending schema migrations to the sqlite database.
// Checks the schema_migrations table to skip already-applied versions.
// Usage: go run ./cmd/migrate (from go-api/)
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"adaptus/go-api/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "No .env loaded: %v\n", err)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "adaptus.db"
	}

	conn, err := db.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open database %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.ApplyMigrations(conn); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	var version int
	var name string
	if err := conn.QueryRow(
		`SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1`).
		Scan(&version, &name); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to read schema version: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Schema up to date at version %d (%s).\n", version, name)
}
