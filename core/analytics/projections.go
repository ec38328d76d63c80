package analytics

import (
	"sort"
	"strconv"

	"sentinela-mg/core/ingest"
)

// Bucket is one aggregated output row.
type Bucket struct {
	Label string
	Total int
}

// TopMunicipalities ranks municipalities by total incident count,
// descending, and keeps the first n; n <= 0 keeps every municipality.
// Ties break by name.
func TopMunicipalities(ds ingest.Dataset, n int) []Bucket {
	totals := make(map[string]int)
	for _, r := range ds {
		totals[r.Municipality] += r.RecordCount
	}
	out := rankDesc(totals)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TotalsByMonth returns exactly twelve buckets for months 1 to 12,
// zero-filled. Data with out-of-range months is not represented.
func TotalsByMonth(ds ingest.Dataset) []Bucket {
	totals := make(map[int]int)
	for _, r := range ds {
		totals[r.Month] += r.RecordCount
	}
	out := make([]Bucket, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, Bucket{Label: strconv.Itoa(m), Total: totals[m]})
	}
	return out
}

// TotalsByQuarter returns exactly four buckets for quarters 1 to 4,
// zero-filled. Out-of-range months derive out-of-range quarters and
// are not represented.
func TotalsByQuarter(ds ingest.Dataset) []Bucket {
	totals := make(map[int]int)
	for _, r := range ds {
		totals[Quarter(r.Month)] += r.RecordCount
	}
	out := make([]Bucket, 0, 4)
	for q := 1; q <= 4; q++ {
		out = append(out, Bucket{Label: strconv.Itoa(q), Total: totals[q]})
	}
	return out
}

// TotalsByType ranks standardized crime types by total incident count,
// descending. Ties break by name.
func TotalsByType(ds ingest.Dataset) []Bucket {
	totals := make(map[string]int)
	for _, r := range ds {
		totals[r.StandardizedType] += r.RecordCount
	}
	return rankDesc(totals)
}

// Quarter maps a month to its calendar quarter with floor division, so
// months at or below zero map below quarter 1 instead of wrapping.
func Quarter(month int) int {
	m := month - 1
	q := m / 3
	if m < 0 && m%3 != 0 {
		q--
	}
	return q + 1
}

func rankDesc(totals map[string]int) []Bucket {
	out := make([]Bucket, 0, len(totals))
	for label, total := range totals {
		out = append(out, Bucket{Label: label, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Label < out[j].Label
	})
	return out
}
