package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var ErrMissingColumn = errors.New("missing column")

// Columns the source file must carry, located by header name rather
// than position.
var requiredColumns = []string{"municipio", "cod_municipio", "natureza", "rmbh", "registros", "mes", "ano", "risp"}

// RawRow is one source row keyed by header name, values untouched.
type RawRow map[string]string

// ReadFile reads the semicolon-delimited source file at path.
func ReadFile(path string, logger zerolog.Logger) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	rows, err := Read(f, logger)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read parses semicolon-delimited rows with a header line. Ragged rows
// are tolerated; missing trailing fields come back as empty strings and
// fall to the normalizer's drop rules.
func Read(r io.Reader, logger zerolog.Logger) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("source file is empty")
		}
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	var rows []RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(RawRow, len(requiredColumns))
		for name, i := range idx {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	logger.Debug().Int("rows", len(rows)).Strs("columns", header).Msg("source file read")
	if len(rows) > 0 {
		n := len(rows)
		if n > 5 {
			n = 5
		}
		logger.Debug().Interface("first_rows", rows[:n]).Msg("source preview")
	}
	return rows, nil
}
