package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-analytics/internal/engine"
)

// TicketSource fetches the raw ticket table from the operational database.
type TicketSource interface {
	FetchTable(ctx context.Context) (engine.RawTable, error)
}

type ticketSource struct {
	pool  *pgxpool.Pool
	table string
}

// NewTicketSource instantiates a database-backed source reading the given table.
func NewTicketSource(pool *pgxpool.Pool, table string) TicketSource {
	return &ticketSource{pool: pool, table: table}
}

// FetchTable selects every expected column the source table actually has,
// rendered as text. Columns the table lacks are simply left out of the header;
// the engine reconciles the gap downstream.
func (s *ticketSource) FetchTable(ctx context.Context) (engine.RawTable, error) {
	if s.pool == nil {
		return engine.RawTable{}, errors.New("no database source configured")
	}

	columns, err := s.availableColumns(ctx)
	if err != nil {
		return engine.RawTable{}, fmt.Errorf("inspect source table %s: %w", s.table, err)
	}
	if len(columns) == 0 {
		return engine.RawTable{}, fmt.Errorf("source table %s carries none of the expected columns", s.table)
	}

	selects := make([]string, len(columns))
	for i, name := range columns {
		selects[i] = fmt.Sprintf(`%s::text`, pgx.Identifier{name}.Sanitize())
	}
	query := fmt.Sprintf(`SELECT %s FROM %s`,
		strings.Join(selects, ", "), pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return engine.RawTable{}, fmt.Errorf("read source table %s: %w", s.table, err)
	}
	defer rows.Close()

	table := engine.RawTable{Columns: columns}
	for rows.Next() {
		cells := make([]*string, len(columns))
		targets := make([]any, len(columns))
		for i := range cells {
			targets[i] = &cells[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return engine.RawTable{}, fmt.Errorf("scan source row: %w", err)
		}

		row := make([]string, len(columns))
		for i, cell := range cells {
			if cell != nil {
				row[i] = *cell
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return engine.RawTable{}, fmt.Errorf("read source table %s: %w", s.table, err)
	}
	return table, nil
}

// availableColumns intersects the table's columns with the expected schema,
// preserving the expected order.
func (s *ticketSource) availableColumns(ctx context.Context) ([]string, error) {
	const query = `
        SELECT column_name FROM information_schema.columns
        WHERE table_schema = current_schema() AND table_name = $1`

	rows, err := s.pool.Query(ctx, query, s.table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	present := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		present[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var columns []string
	for _, name := range engine.RequiredColumns {
		if _, ok := present[name]; ok {
			columns = append(columns, name)
		}
	}
	return columns, nil
}
