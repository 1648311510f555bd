package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/spec-kit/sla-analytics/internal/auth"
	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/engine"
	"github.com/spec-kit/sla-analytics/internal/export"
	"github.com/spec-kit/sla-analytics/internal/ingest"
	"github.com/spec-kit/sla-analytics/internal/observability"
)

func main() {
	app := &cli.App{
		Name:  "slareport",
		Usage: "Derive SLA statuses and KPI tables from a service-ticket export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			hashSecretCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze a ticket CSV and print/export the report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the ticket CSV export",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "as-of",
				Usage: "Reference date (2006-01-02); defaults to today",
			},
			&cli.StringSliceFlag{
				Name:    "dimension",
				Aliases: []string{"d"},
				Usage:   "Dimension to break down by (repeatable)",
				Value:   cli.NewStringSlice("division", "regional", "ticket_type", "priority", "supplier", "region"),
				EnvVars: []string{"ANALYSIS_DIMENSIONS"},
			},
			&cli.IntFlag{
				Name:    "top",
				Value:   20,
				Usage:   "Rows kept per breakdown",
				EnvVars: []string{"ANALYSIS_TOP_N"},
			},
			&cli.IntFlag{
				Name:    "top-responsibles",
				Value:   15,
				Usage:   "Entries in the responsible ranking",
				EnvVars: []string{"ANALYSIS_TOP_RESPONSIBLES"},
			},
			&cli.Float64Flag{
				Name:    "sla-target",
				Value:   96,
				Usage:   "Completion SLA target in percent",
				EnvVars: []string{"ANALYSIS_SLA_TARGET"},
			},
			&cli.Float64Flag{
				Name:    "cleanup-target",
				Value:   98,
				Usage:   "Cleanup target in percent",
				EnvVars: []string{"ANALYSIS_CLEANUP_TARGET"},
			},
			&cli.IntFlag{
				Name:    "pending-closure-days",
				Value:   30,
				Usage:   "Days after completion before a ticket counts as pending closure",
				EnvVars: []string{"ANALYSIS_PENDING_CLOSURE_DAYS"},
			},
			&cli.StringFlag{
				Name:  "json",
				Usage: "Write the full report as JSON to this path",
			},
			&cli.StringFlag{
				Name:  "csv-dir",
				Usage: "Write breakdown tables and record extracts to this directory",
			},
			&cli.StringFlag{
				Name:  "enriched-csv",
				Usage: "Write the enriched record table to this path",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	logger, err := observability.NewLogger(config.LoggerConfig{Level: c.String("log-level")})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	table, err := ingest.ReadCSV(c.String("input"))
	if err != nil {
		return err
	}

	ref := time.Now().UTC()
	if value := c.String("as-of"); value != "" {
		ref, err = time.Parse("2006-01-02", value)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q: use 2006-01-02", value)
		}
	}
	ref = engine.DateOnly(ref.UTC())

	targets := engine.Targets{SLA: c.Float64("sla-target"), Cleanup: c.Float64("cleanup-target")}
	normalizer := engine.NewNormalizer(domain.DefaultRegionLookup(), logger)
	deriver := engine.NewDeriver(c.Int("pending-closure-days"), logger)
	calculator := engine.NewCalculator(targets, logger)
	aggregator := engine.NewAggregator(logger)

	ds := normalizer.Normalize(table)
	deriver.Enrich(ds, ref)

	kpis := calculator.KPIs(ds)
	dimensions := c.StringSlice("dimension")
	breakdowns := make([]engine.Breakdown, 0, len(dimensions))
	for _, dimension := range dimensions {
		breakdowns = append(breakdowns, aggregator.Breakdown(ds, dimension, c.Int("top")))
	}
	monthly := aggregator.MonthlyEvolution(ds)
	responsibles := aggregator.TopResponsibles(ds, c.Int("top-responsibles"))
	late := aggregator.LateAndOpen(ds)

	printSummary(ds, kpis, breakdowns, ref)

	if path := c.String("json"); path != "" {
		payload := reportPayload{
			GeneratedAt:     time.Now().UTC(),
			ReferenceDate:   ref,
			Source:          c.String("input"),
			SLATarget:       targets.SLA,
			CleanupTarget:   targets.Cleanup,
			TotalRecords:    ds.Report.Rows,
			MissingColumns:  ds.Report.MissingColumns,
			KPIs:            kpis,
			Breakdowns:      breakdowns,
			Monthly:         monthly,
			TopResponsibles: responsibles,
		}
		if err := export.WriteReportJSON(path, payload); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", path)
	}

	if dir := c.String("csv-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		for _, breakdown := range breakdowns {
			path := filepath.Join(dir, breakdown.Dimension+".csv")
			if err := export.WriteBreakdownCSV(path, breakdown); err != nil {
				return err
			}
		}
		if err := export.WriteLateAndOpenCSV(filepath.Join(dir, "late_and_open.csv"), late); err != nil {
			return err
		}
		if err := export.WriteMissedStartCSV(filepath.Join(dir, "missed_start.csv"), aggregator.MissedStart(ds)); err != nil {
			return err
		}
		if err := export.WriteMissedCompletionCSV(filepath.Join(dir, "missed_completion.csv"), aggregator.MissedCompletion(ds)); err != nil {
			return err
		}
		if err := export.WriteAccumulatedCSV(filepath.Join(dir, "accumulated.csv"), aggregator.AccumulatedByDay(ds)); err != nil {
			return err
		}
		if err := export.WriteCalendarCSV(filepath.Join(dir, "calendar.csv"), engine.CalendarSpan(ds)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report tables written to %s\n", dir)
	}

	if path := c.String("enriched-csv"); path != "" {
		if err := export.WriteEnrichedCSV(path, ds.Enriched); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "enriched table written to %s\n", path)
	}

	return nil
}

// reportPayload mirrors the API report shape for file export.
type reportPayload struct {
	GeneratedAt     time.Time                 `json:"generated_at"`
	ReferenceDate   time.Time                 `json:"reference_date"`
	Source          string                    `json:"source"`
	SLATarget       float64                   `json:"sla_target"`
	CleanupTarget   float64                   `json:"cleanup_target"`
	TotalRecords    int                       `json:"total_records"`
	MissingColumns  []string                  `json:"missing_columns"`
	KPIs            engine.KPIMap             `json:"kpis"`
	Breakdowns      []engine.Breakdown        `json:"breakdowns"`
	Monthly         []engine.MonthlyRow       `json:"monthly"`
	TopResponsibles []engine.ResponsibleCount `json:"top_responsibles"`
}

// summaryOrder fixes the stdout KPI listing; the map itself has no order.
var summaryOrder = []engine.Measure{
	engine.MeasureTotalTickets,
	engine.MeasureTotalCompleted,
	engine.MeasureCurrentBacklog,
	engine.MeasureStartOnTarget,
	engine.MeasureCompletionOnTarget,
	engine.MeasureStartSLA,
	engine.MeasureCompletionSLA,
	engine.MeasureStartVsTarget,
	engine.MeasureCompletionVsTarget,
	engine.MeasureCompletionVsCleanup,
	engine.MeasureDelayedTickets,
	engine.MeasureOpenNoForecast,
	engine.MeasureMissedCompletion,
	engine.MeasurePendingClosure,
	engine.MeasureNearDue,
	engine.MeasureDistinctSuppliers,
	engine.MeasureDistinctUnits,
	engine.MeasureAvgForecastDelay,
	engine.MeasureAvgArrivalDays,
	engine.MeasureAvgCompletionDays,
	engine.MeasureAvgClosingDays,
	engine.MeasureAvgServiceDays,
	engine.MeasureAvgTicketValue,
	engine.MeasureTotalTicketValue,
	engine.MeasureAvgArrivalTime,
	engine.MeasureTotalArrivalTime,
}

func printSummary(ds *engine.Dataset, kpis engine.KPIMap, breakdowns []engine.Breakdown, ref time.Time) {
	fmt.Printf("reference date:  %s\n", ref.Format("2006-01-02"))
	fmt.Printf("records:         %d\n", ds.Report.Rows)
	if len(ds.Report.MissingColumns) > 0 {
		fmt.Printf("missing columns: %s\n", strings.Join(ds.Report.MissingColumns, ", "))
	}
	if ds.Report.UnknownRegions > 0 {
		fmt.Printf("unknown regions: %d\n", ds.Report.UnknownRegions)
	}

	fmt.Println()
	for _, measure := range summaryOrder {
		if value, ok := kpis[measure]; ok {
			fmt.Printf("  %-30s %v\n", measure, value)
		}
	}

	for _, breakdown := range breakdowns {
		if len(breakdown.Rows) == 0 {
			continue
		}
		fmt.Printf("\nby %s:\n", breakdown.Dimension)
		shown := len(breakdown.Rows)
		if shown > 5 {
			shown = 5
		}
		for _, row := range breakdown.Rows[:shown] {
			fmt.Printf("  %-30s %6d tickets  %6.2f%% completion\n", row.Value, row.Tickets, row.CompletionRate)
		}
		if rest := len(breakdown.Rows) - shown; rest > 0 {
			fmt.Printf("  ... %d more\n", rest)
		}
	}
}

func hashSecretCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash-secret",
		Usage: "Hash an API client secret for AUTH_CLIENTS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "secret",
				Usage:    "Plaintext secret to hash",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "cost",
				Value: 12,
				Usage: "bcrypt cost factor",
			},
		},
		Action: func(c *cli.Context) error {
			hash, err := auth.HashSecret(c.String("secret"), c.Int("cost"))
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
