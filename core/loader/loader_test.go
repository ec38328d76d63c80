package loader

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"sentinela-mg/config"
	"sentinela-mg/core/ingest"
	"sentinela-mg/core/store"
)

func setupLoader(t *testing.T) (*Loader, store.CrimeStore) {
	t.Helper()
	cfg := &config.AppConfig{
		DBDriver: store.DriverSQLite,
		DBURL:    "file:" + filepath.Join(t.TempDir(), "crimes.db"),
	}
	db, err := store.NewDB(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.ApplySchema(context.Background(), db, zerolog.Nop()))
	st := store.NewCrimeStore(db)
	return New(st, zerolog.Nop()), st
}

func record(municipality, code, crimeType string, month, year, count, region int) ingest.Record {
	yes := true
	return ingest.Record{
		Municipality:     municipality,
		MunicipalityCode: code,
		CrimeType:        crimeType,
		StandardizedType: strings.ToUpper(crimeType),
		InMetroArea:      &yes,
		RecordCount:      count,
		Month:            month,
		Year:             year,
		RegionID:         region,
	}
}

func assertCounts(t *testing.T, st store.CrimeStore, regions, towns, types, incidents int) {
	t.Helper()
	ctx := context.Background()
	n, err := st.CountRegions(ctx)
	require.NoError(t, err)
	require.Equal(t, regions, n)
	n, err = st.CountMunicipalities(ctx)
	require.NoError(t, err)
	require.Equal(t, towns, n)
	n, err = st.CountCrimeTypes(ctx)
	require.NoError(t, err)
	require.Equal(t, types, n)
	n, err = st.CountIncidents(ctx)
	require.NoError(t, err)
	require.Equal(t, incidents, n)
}

func TestLoadCollapsesDuplicateRows(t *testing.T) {
	l, st := setupLoader(t)
	ds := ingest.Dataset{
		record("BELO HORIZONTE", "0001", "ROUBO", 1, 2023, 10, 1),
		record("BELO HORIZONTE", "0001", "ROUBO", 1, 2023, 10, 1),
	}
	rep, err := l.Load(context.Background(), ds)
	require.NoError(t, err)
	require.False(t, rep.Skipped)
	require.NotEqual(t, uuid.Nil, rep.LoadID)
	require.Equal(t, 2, rep.RowsSeen)
	require.Equal(t, 1, rep.RegionsInserted)
	require.Equal(t, 1, rep.MunicipalitiesInserted)
	require.Equal(t, 1, rep.CrimeTypesInserted)
	require.Equal(t, 1, rep.IncidentsInserted)
	assertCounts(t, st, 1, 1, 1, 1)
}

func TestLoadIdempotent(t *testing.T) {
	l, st := setupLoader(t)
	ds := ingest.Dataset{
		record("BELO HORIZONTE", "0001", "ROUBO", 1, 2023, 10, 1),
		record("CONTAGEM", "0002", "FURTO", 2, 2023, 4, 1),
		record("UBERABA", "3170", "ROUBO", 3, 2023, 7, 2),
	}
	first, err := l.Load(context.Background(), ds)
	require.NoError(t, err)
	require.False(t, first.Skipped)
	assertCounts(t, st, 2, 3, 2, 3)

	second, err := l.Load(context.Background(), ds)
	require.NoError(t, err)
	require.True(t, second.Skipped)
	require.Equal(t, 3, second.ExistingIncidents)
	require.Zero(t, second.RegionsInserted)
	require.Zero(t, second.IncidentsInserted)
	assertCounts(t, st, 2, 3, 2, 3)
}

func TestLoadIntoPreSeededRegions(t *testing.T) {
	l, st := setupLoader(t)
	_, err := st.EnsureRegions(context.Background(), []store.SecurityRegion{{ID: 1, Description: "RISP 1"}})
	require.NoError(t, err)

	ds := ingest.Dataset{
		record("BELO HORIZONTE", "0001", "ROUBO", 1, 2023, 10, 1),
		record("UBERABA", "3170", "FURTO", 1, 2023, 3, 2),
	}
	rep, err := l.Load(context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, 1, rep.RegionsInserted, "only the unseen region is inserted")
	assertCounts(t, st, 2, 2, 2, 2)
}

func TestLoadSplitsDistinctTypes(t *testing.T) {
	l, st := setupLoader(t)
	ds := ingest.Dataset{
		record("BELO HORIZONTE", "0001", "Roubo", 1, 2023, 10, 1),
		record("BELO HORIZONTE", "0001", "Roubo consumado", 1, 2023, 2, 1),
	}
	rep, err := l.Load(context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, 2, rep.CrimeTypesInserted)
	require.Equal(t, 2, rep.IncidentsInserted)
	assertCounts(t, st, 1, 1, 2, 2)
}

func TestLoadNilMetroFlagAborts(t *testing.T) {
	l, _ := setupLoader(t)
	rec := record("BELO HORIZONTE", "0001", "ROUBO", 1, 2023, 10, 1)
	rec.InMetroArea = nil
	_, err := l.Load(context.Background(), ingest.Dataset{rec})
	require.Error(t, err)
	require.Contains(t, err.Error(), "incident records")
}

func TestDistinctRegions(t *testing.T) {
	ds := ingest.Dataset{
		record("A", "1", "X", 1, 2023, 1, 2),
		record("B", "2", "X", 1, 2023, 1, 1),
		record("C", "3", "X", 1, 2023, 1, 2),
	}
	regions := distinctRegions(ds)
	require.Equal(t, []store.SecurityRegion{
		{ID: 2, Description: "RISP 2"},
		{ID: 1, Description: "RISP 1"},
	}, regions)
}

func TestDistinctMunicipalities(t *testing.T) {
	ds := ingest.Dataset{
		record("BELO HORIZONTE", "0001", "X", 1, 2023, 1, 1),
		record("BELO HORIZONTE", "0001", "Y", 2, 2023, 1, 1),
		record("CONTAGEM", "0002", "X", 1, 2023, 1, 1),
	}
	towns := distinctMunicipalities(ds)
	require.Equal(t, []store.Municipality{
		{Code: "0001", Name: "BELO HORIZONTE", RegionID: 1},
		{Code: "0002", Name: "CONTAGEM", RegionID: 1},
	}, towns)
}
