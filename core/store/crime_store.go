package store

import (
	"context"
	"database/sql"
	"errors"
)

type SecurityRegion struct {
	ID          int
	Description string
}

type Municipality struct {
	Code     string
	Name     string
	RegionID int
}

type IncidentRecord struct {
	ID               int64
	Month            int
	Year             int
	RecordCount      int
	InMetroArea      *bool
	MunicipalityCode string
	CrimeTypeID      int64
}

// CrimeStore persists the normalized crime statistics. All Ensure and
// Insert methods are insert-if-absent: existing rows are never updated.
type CrimeStore interface {
	EnsureRegions(ctx context.Context, regions []SecurityRegion) (int, error)
	EnsureMunicipalities(ctx context.Context, towns []Municipality) (int, error)
	EnsureCrimeType(ctx context.Context, name string) (id int64, created bool, err error)
	InsertMissingIncidents(ctx context.Context, records []IncidentRecord) (int, error)

	CountRegions(ctx context.Context) (int, error)
	CountMunicipalities(ctx context.Context) (int, error)
	CountCrimeTypes(ctx context.Context) (int, error)
	CountIncidents(ctx context.Context) (int, error)
}

type crimeStore struct {
	db *sql.DB
}

func NewCrimeStore(db *sql.DB) CrimeStore {
	return &crimeStore{db: db}
}

// EnsureRegions inserts the regions whose id is not present yet. The
// whole step runs in one transaction.
func (s *crimeStore) EnsureRegions(ctx context.Context, regions []SecurityRegion) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, r := range regions {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM security_regions WHERE id = $1`, r.ID).Scan(&one)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			tx.Rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO security_regions(id, description)
			VALUES($1, $2)`, r.ID, r.Description); err != nil {
			tx.Rollback()
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// EnsureMunicipalities inserts the municipalities whose code is not
// present yet, one transaction for the whole step. The first occurrence
// of a code wins; later rows with the same code are skipped.
func (s *crimeStore) EnsureMunicipalities(ctx context.Context, towns []Municipality) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, m := range towns {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM municipalities WHERE code = $1`, m.Code).Scan(&one)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			tx.Rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO municipalities(code, name, region_id)
			VALUES($1, $2, $3)`, m.Code, m.Name, m.RegionID); err != nil {
			tx.Rollback()
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// EnsureCrimeType returns the id for a standardized name, inserting it
// first if absent. Runs outside any transaction: the assigned id must
// be durable before the caller builds incident rows on it.
func (s *crimeStore) EnsureCrimeType(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM crime_types WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO crime_types(name)
		VALUES($1) RETURNING id`, name).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// InsertMissingIncidents inserts the records whose composite key
// (municipality, crime type, month, year) is not present yet, one
// transaction for the whole step.
func (s *crimeStore) InsertMissingIncidents(ctx context.Context, records []IncidentRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, rec := range records {
		var one int
		err := tx.QueryRowContext(ctx, `
			SELECT 1 FROM incident_records
			WHERE municipality_code = $1 AND crime_type_id = $2 AND month = $3 AND year = $4`,
			rec.MunicipalityCode, rec.CrimeTypeID, rec.Month, rec.Year).Scan(&one)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			tx.Rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO incident_records(month, year, record_count, in_metro_area, municipality_code, crime_type_id)
			VALUES($1, $2, $3, $4, $5, $6)`,
			rec.Month, rec.Year, rec.RecordCount, rec.InMetroArea, rec.MunicipalityCode, rec.CrimeTypeID); err != nil {
			tx.Rollback()
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *crimeStore) CountRegions(ctx context.Context) (int, error) {
	return s.countRows(ctx, "security_regions")
}

func (s *crimeStore) CountMunicipalities(ctx context.Context) (int, error) {
	return s.countRows(ctx, "municipalities")
}

func (s *crimeStore) CountCrimeTypes(ctx context.Context) (int, error) {
	return s.countRows(ctx, "crime_types")
}

func (s *crimeStore) CountIncidents(ctx context.Context) (int, error) {
	return s.countRows(ctx, "incident_records")
}

func (s *crimeStore) countRows(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
