package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/engine"
)

// KPI values carry their Go type through a kind column so the map can be
// rebuilt without guessing from the text.
const (
	kpiKindInt      = "int"
	kpiKindFloat    = "float"
	kpiKindMoney    = "money"
	kpiKindDuration = "duration"
	kpiKindText     = "text"
)

// RunStore persists analysis runs together with their KPI maps and
// dimensional tables.
type RunStore interface {
	StartRun(ctx context.Context, run *domain.AnalysisRun) error
	CompleteRun(ctx context.Context, run *domain.AnalysisRun, kpis engine.KPIMap, breakdowns []engine.Breakdown, monthly []engine.MonthlyRow) error
	FailRun(ctx context.Context, runID, reason string) error
	GetRun(ctx context.Context, runID string) (*domain.AnalysisRun, error)
	LatestRun(ctx context.Context) (*domain.AnalysisRun, error)
	GetKPIs(ctx context.Context, runID string) (engine.KPIMap, error)
	GetBreakdowns(ctx context.Context, runID string) ([]engine.Breakdown, error)
	GetBreakdown(ctx context.Context, runID, dimension string) (*engine.Breakdown, error)
	GetMonthly(ctx context.Context, runID string) ([]engine.MonthlyRow, error)
}

type runStore struct {
	pool *pgxpool.Pool
}

// NewRunStore instantiates the store.
func NewRunStore(pool *pgxpool.Pool) RunStore {
	return &runStore{pool: pool}
}

func (s *runStore) StartRun(ctx context.Context, run *domain.AnalysisRun) error {
	const query = `
        INSERT INTO analysis_runs (id, status, source, reference_date, total_records, missing_columns, sla_target, cleanup_target, started_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
        RETURNING started_at`
	run.Status = domain.RunStatusRunning
	return s.pool.QueryRow(ctx, query,
		run.ID,
		run.Status,
		run.Source,
		run.ReferenceInstant,
		run.TotalRecords,
		run.MissingColumns,
		run.SLATarget,
		run.CleanupTarget,
	).Scan(&run.StartedAt)
}

func (s *runStore) CompleteRun(ctx context.Context, run *domain.AnalysisRun, kpis engine.KPIMap, breakdowns []engine.Breakdown, monthly []engine.MonthlyRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const update = `
        UPDATE analysis_runs
        SET status=$1, total_records=$2, missing_columns=$3, finished_at=NOW()
        WHERE id=$4
        RETURNING finished_at`
	run.Status = domain.RunStatusCompleted
	if err := tx.QueryRow(ctx, update,
		run.Status,
		run.TotalRecords,
		run.MissingColumns,
		run.ID,
	).Scan(&run.FinishedAt); err != nil {
		return err
	}

	const insertKPI = `
        INSERT INTO run_kpis (run_id, measure, kind, value)
        VALUES ($1,$2,$3,$4)`
	for measure, value := range kpis {
		kind, text := encodeKPI(value)
		if _, err := tx.Exec(ctx, insertKPI, run.ID, string(measure), kind, text); err != nil {
			return fmt.Errorf("store kpi %s: %w", measure, err)
		}
	}

	const insertBreakdownRow = `
        INSERT INTO run_breakdowns (run_id, dimension, position, value, tickets, start_on_target, completion_on_target, start_rate, completion_rate, avg_business_days, total_value)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	for _, breakdown := range breakdowns {
		for position, row := range breakdown.Rows {
			if _, err := tx.Exec(ctx, insertBreakdownRow,
				run.ID,
				breakdown.Dimension,
				position,
				row.Value,
				row.Tickets,
				row.StartOnTarget,
				row.CompletionOnTarget,
				row.StartRate,
				row.CompletionRate,
				row.AvgBusinessDays,
				row.TotalValue,
			); err != nil {
				return fmt.Errorf("store breakdown %s: %w", breakdown.Dimension, err)
			}
		}
	}

	const insertMonthlyRow = `
        INSERT INTO run_monthly (run_id, year, month, label, tickets, start_on_target, completion_on_target, start_rate, completion_rate)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	for _, row := range monthly {
		if _, err := tx.Exec(ctx, insertMonthlyRow,
			run.ID,
			row.Year,
			int(row.Month),
			row.Label,
			row.Tickets,
			row.StartOnTarget,
			row.CompletionOnTarget,
			row.StartRate,
			row.CompletionRate,
		); err != nil {
			return fmt.Errorf("store monthly bucket %s: %w", row.Label, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *runStore) FailRun(ctx context.Context, runID, reason string) error {
	const query = `
        UPDATE analysis_runs SET status=$1, error=$2, finished_at=NOW()
        WHERE id=$3`
	cmd, err := s.pool.Exec(ctx, query, domain.RunStatusFailed, reason, runID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *runStore) GetRun(ctx context.Context, runID string) (*domain.AnalysisRun, error) {
	const query = `
        SELECT id, status, source, reference_date, total_records, missing_columns,
               sla_target, cleanup_target, started_at, finished_at, error
        FROM analysis_runs WHERE id=$1`
	return s.fetchSingle(ctx, query, runID)
}

func (s *runStore) LatestRun(ctx context.Context) (*domain.AnalysisRun, error) {
	const query = `
        SELECT id, status, source, reference_date, total_records, missing_columns,
               sla_target, cleanup_target, started_at, finished_at, error
        FROM analysis_runs
        WHERE status=$1
        ORDER BY finished_at DESC
        LIMIT 1`
	return s.fetchSingle(ctx, query, domain.RunStatusCompleted)
}

func (s *runStore) fetchSingle(ctx context.Context, query string, arg any) (*domain.AnalysisRun, error) {
	var run domain.AnalysisRun
	if err := s.pool.QueryRow(ctx, query, arg).Scan(
		&run.ID,
		&run.Status,
		&run.Source,
		&run.ReferenceInstant,
		&run.TotalRecords,
		&run.MissingColumns,
		&run.SLATarget,
		&run.CleanupTarget,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Error,
	); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *runStore) GetKPIs(ctx context.Context, runID string) (engine.KPIMap, error) {
	const query = `SELECT measure, kind, value FROM run_kpis WHERE run_id=$1`
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kpis := engine.KPIMap{}
	for rows.Next() {
		var measure, kind, raw string
		if err := rows.Scan(&measure, &kind, &raw); err != nil {
			return nil, err
		}
		value, err := decodeKPI(kind, raw)
		if err != nil {
			return nil, fmt.Errorf("decode kpi %s: %w", measure, err)
		}
		kpis[engine.Measure(measure)] = value
	}
	return kpis, rows.Err()
}

func (s *runStore) GetBreakdowns(ctx context.Context, runID string) ([]engine.Breakdown, error) {
	const query = `
        SELECT dimension, value, tickets, start_on_target, completion_on_target,
               start_rate, completion_rate, avg_business_days, total_value
        FROM run_breakdowns
        WHERE run_id=$1
        ORDER BY dimension, position`
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdowns := []engine.Breakdown{}
	for rows.Next() {
		var dimension string
		row, err := scanBreakdownRow(rows, &dimension)
		if err != nil {
			return nil, err
		}
		if len(breakdowns) == 0 || breakdowns[len(breakdowns)-1].Dimension != dimension {
			breakdowns = append(breakdowns, engine.Breakdown{Dimension: dimension})
		}
		last := &breakdowns[len(breakdowns)-1]
		last.Rows = append(last.Rows, row)
	}
	return breakdowns, rows.Err()
}

func (s *runStore) GetBreakdown(ctx context.Context, runID, dimension string) (*engine.Breakdown, error) {
	const query = `
        SELECT dimension, value, tickets, start_on_target, completion_on_target,
               start_rate, completion_rate, avg_business_days, total_value
        FROM run_breakdowns
        WHERE run_id=$1 AND dimension=$2
        ORDER BY position`
	rows, err := s.pool.Query(ctx, query, runID, dimension)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := engine.Breakdown{Dimension: dimension, Rows: []engine.BreakdownRow{}}
	for rows.Next() {
		var stored string
		row, err := scanBreakdownRow(rows, &stored)
		if err != nil {
			return nil, err
		}
		breakdown.Rows = append(breakdown.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &breakdown, nil
}

func (s *runStore) GetMonthly(ctx context.Context, runID string) ([]engine.MonthlyRow, error) {
	const query = `
        SELECT year, month, label, tickets, start_on_target, completion_on_target, start_rate, completion_rate
        FROM run_monthly
        WHERE run_id=$1
        ORDER BY year, month`
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	monthly := []engine.MonthlyRow{}
	for rows.Next() {
		var row engine.MonthlyRow
		var month int
		if err := rows.Scan(
			&row.Year,
			&month,
			&row.Label,
			&row.Tickets,
			&row.StartOnTarget,
			&row.CompletionOnTarget,
			&row.StartRate,
			&row.CompletionRate,
		); err != nil {
			return nil, err
		}
		row.Month = time.Month(month)
		monthly = append(monthly, row)
	}
	return monthly, rows.Err()
}

func scanBreakdownRow(rows pgx.Rows, dimension *string) (engine.BreakdownRow, error) {
	var row engine.BreakdownRow
	err := rows.Scan(
		dimension,
		&row.Value,
		&row.Tickets,
		&row.StartOnTarget,
		&row.CompletionOnTarget,
		&row.StartRate,
		&row.CompletionRate,
		&row.AvgBusinessDays,
		&row.TotalValue,
	)
	return row, err
}

func encodeKPI(value any) (kind, text string) {
	switch v := value.(type) {
	case int:
		return kpiKindInt, strconv.Itoa(v)
	case float64:
		return kpiKindFloat, strconv.FormatFloat(v, 'f', -1, 64)
	case decimal.Decimal:
		return kpiKindMoney, v.String()
	case string:
		return kpiKindDuration, v
	default:
		return kpiKindText, fmt.Sprint(value)
	}
}

func decodeKPI(kind, raw string) (any, error) {
	switch kind {
	case kpiKindInt:
		return strconv.Atoi(raw)
	case kpiKindFloat:
		return strconv.ParseFloat(raw, 64)
	case kpiKindMoney:
		return decimal.NewFromString(raw)
	case kpiKindDuration, kpiKindText:
		return raw, nil
	default:
		return nil, fmt.Errorf("unrecognized kpi kind %q", kind)
	}
}
