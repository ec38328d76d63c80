package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

func schemaStatements(dialect string) []string {
	autoPK := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == DriverPostgres {
		autoPK = "INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS security_regions (
			id INTEGER PRIMARY KEY,
			description TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS municipalities (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			region_id INTEGER NOT NULL,
			FOREIGN KEY(region_id) REFERENCES security_regions(id)
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS crime_types (
			id %s,
			name TEXT UNIQUE NOT NULL
		);`, autoPK),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS incident_records (
			id %s,
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			record_count INTEGER NOT NULL CHECK (record_count >= 0),
			in_metro_area BOOLEAN NOT NULL,
			municipality_code TEXT NOT NULL,
			crime_type_id INTEGER NOT NULL,
			FOREIGN KEY(municipality_code) REFERENCES municipalities(code),
			FOREIGN KEY(crime_type_id) REFERENCES crime_types(id),
			UNIQUE(municipality_code, crime_type_id, month, year)
		);`, autoPK),
	}
}

// ApplySchema creates any missing tables. Safe to run against an
// already-initialized store.
func ApplySchema(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	dialect, err := detectDialect(ctx, db)
	if err != nil {
		return err
	}
	for i, stmt := range schemaStatements(dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement #%d failed: %w", i+1, err)
		}
	}
	logger.Debug().Str("dialect", dialect).Msg("schema applied")
	return nil
}

// detectDialect probes for sqlite first; anything else answering
// version() is treated as postgres.
func detectDialect(ctx context.Context, db *sql.DB) (string, error) {
	var v string
	if err := db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&v); err == nil {
		return DriverSQLite, nil
	}
	if err := db.QueryRowContext(ctx, `SELECT version()`).Scan(&v); err != nil {
		return "", fmt.Errorf("detect database dialect: %w", err)
	}
	return DriverPostgres, nil
}
