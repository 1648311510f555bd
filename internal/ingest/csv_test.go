package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSVBuildsRawTable(t *testing.T) {
	csvData := "ticket_number,region,created_at\n" +
		"T-1,SP,2026-01-05 08:00:00\n" +
		"T-2,RJ\n"

	path := filepath.Join(t.TempDir(), "tickets.csv")
	if err := os.WriteFile(path, []byte(csvData), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(table.Columns) != 3 || table.Columns[0] != "ticket_number" {
		t.Fatalf("expected a 3-column header, got %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if len(table.Rows[1]) != 2 {
		t.Fatalf("expected the short row to stay ragged, got %v", table.Rows[1])
	}
}

func TestReadCSVEmptyFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := ReadCSV(path); err == nil {
		t.Fatalf("expected an error for an empty source")
	}
}

func TestReadCSVMissingFileIsError(t *testing.T) {
	if _, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatalf("expected an error for a missing source")
	}
}

func TestFromReaderHeaderOnly(t *testing.T) {
	table, err := FromReader(strings.NewReader("ticket_number,region\n"))
	if err != nil {
		t.Fatalf("read header-only source: %v", err)
	}
	if len(table.Columns) != 2 || len(table.Rows) != 0 {
		t.Fatalf("expected a header with no rows, got %v / %d rows", table.Columns, len(table.Rows))
	}
}
