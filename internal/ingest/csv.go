package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spec-kit/sla-analytics/internal/engine"
)

// ReadCSV loads a raw ticket table from a CSV file. The header row is taken
// as-is and rows may be ragged; schema reconciliation happens downstream. A
// source that cannot be opened or carries no header at all is an error.
func ReadCSV(path string) (engine.RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return engine.RawTable{}, fmt.Errorf("unable to open source file: %w", err)
	}
	defer file.Close()

	table, err := FromReader(file)
	if err != nil {
		return engine.RawTable{}, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return table, nil
}

// FromReader loads a raw table from any CSV stream.
func FromReader(r io.Reader) (engine.RawTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return engine.RawTable{}, errors.New("source carries no header row")
	}
	if err != nil {
		return engine.RawTable{}, fmt.Errorf("unable to read header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return engine.RawTable{}, fmt.Errorf("unable to read rows: %w", err)
	}
	return engine.RawTable{Columns: header, Rows: rows}, nil
}
