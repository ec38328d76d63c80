package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"

	"sentinela-mg/core/ingest"
	"sentinela-mg/core/store"
)

// ErrIntegrity marks a record whose crime type could not be resolved to
// a persisted identifier.
var ErrIntegrity = errors.New("referential integrity violation")

// Report summarizes one load invocation.
type Report struct {
	LoadID                 uuid.UUID
	Skipped                bool
	ExistingIncidents      int
	RowsSeen               int
	RegionsInserted        int
	MunicipalitiesInserted int
	CrimeTypesInserted     int
	IncidentsInserted      int
}

type Loader struct {
	store store.CrimeStore
	log   zerolog.Logger
}

func New(st store.CrimeStore, logger zerolog.Logger) *Loader {
	return &Loader{store: st, log: logger}
}

// Load reconciles the cleaned dataset into the store. If the incident
// table already holds rows the whole pass is skipped; otherwise missing
// rows are inserted in dependency order (regions, municipalities, crime
// types, incidents) so every foreign key resolves at write time. Loads
// never update or delete.
func (l *Loader) Load(ctx context.Context, ds ingest.Dataset) (*Report, error) {
	loadID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rep := &Report{LoadID: loadID, RowsSeen: len(ds)}
	log := l.log.With().Stringer("load_id", loadID).Logger()

	existing, err := l.store.CountIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("check incident table: %w", err)
	}
	if existing > 0 {
		rep.Skipped = true
		rep.ExistingIncidents = existing
		log.Info().Int("existing", existing).Msg("store already populated, skipping load")
		return rep, nil
	}

	rep.RegionsInserted, err = l.store.EnsureRegions(ctx, distinctRegions(ds))
	if err != nil {
		return nil, fmt.Errorf("load security regions: %w", err)
	}

	rep.MunicipalitiesInserted, err = l.store.EnsureMunicipalities(ctx, distinctMunicipalities(ds))
	if err != nil {
		return nil, fmt.Errorf("load municipalities: %w", err)
	}

	typeIDs := make(map[string]int64)
	for _, name := range ds.DistinctStandardizedTypes() {
		id, created, err := l.store.EnsureCrimeType(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load crime type %q: %w", name, err)
		}
		if created {
			rep.CrimeTypesInserted++
		}
		typeIDs[name] = id
	}
	log.Debug().Int("types", len(typeIDs)).Msg("crime type identifiers resolved")

	records := make([]store.IncidentRecord, 0, len(ds))
	for _, r := range ds {
		typeID, ok := typeIDs[r.StandardizedType]
		if !ok {
			return nil, fmt.Errorf("%w: crime type %q has no identifier", ErrIntegrity, r.StandardizedType)
		}
		records = append(records, store.IncidentRecord{
			Month:            r.Month,
			Year:             r.Year,
			RecordCount:      r.RecordCount,
			InMetroArea:      r.InMetroArea,
			MunicipalityCode: r.MunicipalityCode,
			CrimeTypeID:      typeID,
		})
	}
	rep.IncidentsInserted, err = l.store.InsertMissingIncidents(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("load incident records: %w", err)
	}

	log.Info().
		Int("regions", rep.RegionsInserted).
		Int("municipalities", rep.MunicipalitiesInserted).
		Int("crime_types", rep.CrimeTypesInserted).
		Int("incidents", rep.IncidentsInserted).
		Msg("load complete")
	return rep, nil
}

// distinctRegions keeps the first occurrence of each region id, with a
// synthesized description.
func distinctRegions(ds ingest.Dataset) []store.SecurityRegion {
	seen := make(map[int]struct{})
	var out []store.SecurityRegion
	for _, r := range ds {
		if _, ok := seen[r.RegionID]; ok {
			continue
		}
		seen[r.RegionID] = struct{}{}
		out = append(out, store.SecurityRegion{
			ID:          r.RegionID,
			Description: fmt.Sprintf("RISP %d", r.RegionID),
		})
	}
	return out
}

// distinctMunicipalities keeps the first occurrence of each
// (code, name, region) combination.
func distinctMunicipalities(ds ingest.Dataset) []store.Municipality {
	type key struct {
		code   string
		name   string
		region int
	}
	seen := make(map[key]struct{})
	var out []store.Municipality
	for _, r := range ds {
		k := key{code: r.MunicipalityCode, name: r.Municipality, region: r.RegionID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, store.Municipality{
			Code:     r.MunicipalityCode,
			Name:     r.Municipality,
			RegionID: r.RegionID,
		})
	}
	return out
}
