package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Record is one cleaned incident row.
type Record struct {
	Municipality     string
	MunicipalityCode string
	CrimeType        string
	StandardizedType string
	InMetroArea      *bool
	RecordCount      int
	Month            int
	Year             int
	RegionID         int
}

// Dataset is the cleaned in-memory table. It is rebuilt from the source
// file on every run and never persisted itself.
type Dataset []Record

// Normalize cleans raw rows into typed records. Rows with an unparsable
// registros, mes, ano or risp value are dropped. An unrecognized rmbh
// value leaves InMetroArea nil and keeps the row.
func Normalize(rows []RawRow, logger zerolog.Logger) Dataset {
	ds := make(Dataset, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			Municipality:     strings.ToUpper(strings.TrimSpace(row["municipio"])),
			MunicipalityCode: strings.TrimSpace(row["cod_municipio"]),
			CrimeType:        strings.TrimSpace(row["natureza"]),
			InMetroArea:      parseMetroFlag(row["rmbh"]),
		}
		rec.StandardizedType = strings.ToUpper(rec.CrimeType)
		var ok bool
		if rec.RecordCount, ok = parseNumber(row["registros"]); !ok {
			continue
		}
		if rec.Month, ok = parseNumber(row["mes"]); !ok {
			continue
		}
		if rec.Year, ok = parseNumber(row["ano"]); !ok {
			continue
		}
		if rec.RegionID, ok = parseNumber(row["risp"]); !ok {
			continue
		}
		ds = append(ds, rec)
	}
	logger.Info().
		Int("rows_in", len(rows)).
		Int("rows_kept", len(ds)).
		Int("rows_dropped", len(rows)-len(ds)).
		Msg("dataset normalized")
	types := ds.DistinctStandardizedTypes()
	logger.Debug().Int("count", len(types)).Strs("names", types).Msg("standardized crime types")
	return ds
}

// DistinctStandardizedTypes returns the distinct standardized crime-type
// names in first-seen order.
func (d Dataset) DistinctStandardizedTypes() []string {
	seen := make(map[string]struct{}, len(d))
	var out []string
	for _, r := range d {
		if _, ok := seen[r.StandardizedType]; ok {
			continue
		}
		seen[r.StandardizedType] = struct{}{}
		out = append(out, r.StandardizedType)
	}
	return out
}

// parseNumber accepts integer and float forms and truncates to int.
// NaN and infinities count as unparsable.
func parseNumber(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// parseMetroFlag maps the metropolitan-region column to a boolean. Only
// the literal SIM and NÃO tokens count; anything else is absent.
func parseMetroFlag(raw string) *bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SIM":
		v := true
		return &v
	case "NÃO":
		v := false
		return &v
	}
	return nil
}
