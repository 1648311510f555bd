package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/engine"
	"github.com/spec-kit/sla-analytics/internal/events"
	"github.com/spec-kit/sla-analytics/internal/observability"
	"github.com/spec-kit/sla-analytics/internal/repository"
	"github.com/spec-kit/sla-analytics/pkg/util"
)

// Report is the full output of one analysis run.
type Report struct {
	RunID           string                      `json:"run_id"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	ReferenceDate   time.Time                   `json:"reference_date"`
	Source          string                      `json:"source"`
	SLATarget       float64                     `json:"sla_target"`
	CleanupTarget   float64                     `json:"cleanup_target"`
	TotalRecords    int                         `json:"total_records"`
	MissingColumns  []string                    `json:"missing_columns"`
	DegradedFields  []string                    `json:"degraded_fields"`
	KPIs            engine.KPIMap               `json:"kpis"`
	Breakdowns      []engine.Breakdown          `json:"breakdowns"`
	Monthly         []engine.MonthlyRow         `json:"monthly"`
	TopResponsibles []engine.ResponsibleCount   `json:"top_responsibles"`
	UnknownRegions  int                         `json:"unknown_regions"`
	DateStats       map[string]engine.ParseStat `json:"date_parse_stats"`
}

// RunOptions tunes a single run without touching the configured defaults.
type RunOptions struct {
	Source     string
	AsOf       *time.Time
	Dimensions []string
	TopN       int
}

// AnalysisService orchestrates the derivation pipeline: normalize, enrich,
// aggregate, persist, cache, notify. Store, cache, source, dispatcher and
// metrics are all optional; the service degrades to a pure in-memory run
// when they are absent.
type AnalysisService struct {
	source      repository.TicketSource
	store       repository.RunStore
	cache       *repository.ReportCache
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	normalizer  *engine.Normalizer
	deriver     *engine.Deriver
	calculator  *engine.Calculator
	aggregator  *engine.Aggregator
	analysis    config.AnalysisConfig
	sourceLabel string
}

// AnalysisDependencies bundles collaborators for the analysis service.
type AnalysisDependencies struct {
	Source      repository.TicketSource
	Store       repository.RunStore
	Cache       *repository.ReportCache
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Lookup      domain.RegionLookup
	Analysis    config.AnalysisConfig
	SourceLabel string
}

// NewAnalysisService constructs the service and its engine components.
func NewAnalysisService(deps AnalysisDependencies) *AnalysisService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lookup := deps.Lookup
	if lookup == nil {
		lookup = domain.DefaultRegionLookup()
	}
	label := deps.SourceLabel
	if label == "" {
		label = "inline"
	}
	targets := engine.Targets{SLA: deps.Analysis.SLATarget, Cleanup: deps.Analysis.CleanupTarget}
	return &AnalysisService{
		source:      deps.Source,
		store:       deps.Store,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		normalizer:  engine.NewNormalizer(lookup, logger),
		deriver:     engine.NewDeriver(deps.Analysis.PendingClosureDays, logger),
		calculator:  engine.NewCalculator(targets, logger),
		aggregator:  engine.NewAggregator(logger),
		analysis:    deps.Analysis,
		sourceLabel: label,
	}
}

// Run executes the full pipeline against an already loaded table. The
// reference instant is captured here, once, and handed down; nothing below
// this point samples the clock.
func (s *AnalysisService) Run(ctx context.Context, table engine.RawTable, opts RunOptions) (*Report, error) {
	ref := time.Now().UTC()
	if opts.AsOf != nil {
		ref = opts.AsOf.UTC()
	}
	ref = engine.DateOnly(ref)

	source := opts.Source
	if source == "" {
		source = s.sourceLabel
	}

	run := &domain.AnalysisRun{
		ID:               uuid.NewString(),
		Source:           source,
		ReferenceInstant: ref,
		TotalRecords:     len(table.Rows),
		SLATarget:        s.analysis.SLATarget,
		CleanupTarget:    s.analysis.CleanupTarget,
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventRunStarted,
		RunID: run.ID,
		Payload: events.RunStartedPayload{
			Source:        source,
			ReferenceDate: ref,
			Rows:          len(table.Rows),
		},
	})

	if s.store != nil {
		if err := s.store.StartRun(ctx, run); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}

	started := time.Now()
	ds := s.normalizer.Normalize(table)
	run.TotalRecords = ds.Report.Rows
	run.MissingColumns = ds.Report.MissingColumns
	s.deriver.Enrich(ds, ref)

	kpis := s.calculator.KPIs(ds)

	dimensions := opts.Dimensions
	if len(dimensions) == 0 {
		dimensions = s.analysis.Dimensions
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = s.analysis.TopN
	}
	breakdowns := make([]engine.Breakdown, 0, len(dimensions))
	for _, dimension := range dimensions {
		breakdowns = append(breakdowns, s.aggregator.Breakdown(ds, dimension, topN))
	}
	monthly := s.aggregator.MonthlyEvolution(ds)
	responsibles := s.aggregator.TopResponsibles(ds, s.analysis.TopResponsibles)

	if s.store != nil {
		if err := s.store.CompleteRun(ctx, run, kpis, breakdowns, monthly); err != nil {
			s.failRun(ctx, run, started, err)
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	report := &Report{
		RunID:           run.ID,
		GeneratedAt:     time.Now().UTC(),
		ReferenceDate:   ref,
		Source:          source,
		SLATarget:       s.analysis.SLATarget,
		CleanupTarget:   s.analysis.CleanupTarget,
		TotalRecords:    ds.Report.Rows,
		MissingColumns:  ds.Report.MissingColumns,
		DegradedFields:  degradedFieldNames(ds.Caps),
		KPIs:            kpis,
		Breakdowns:      breakdowns,
		Monthly:         monthly,
		TopResponsibles: responsibles,
		UnknownRegions:  ds.Report.UnknownRegions,
		DateStats:       ds.Report.DateStats,
	}
	s.cacheReport(ctx, report)

	duration := time.Since(started)
	backlog := intKPI(kpis, engine.MeasureCurrentBacklog)
	if s.metrics != nil {
		s.metrics.RecordRun("completed", duration, ds.Report.Rows)
		s.metrics.RecordSchemaGaps(len(ds.Report.MissingColumns))
		s.metrics.SetBacklog(backlog)
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventRunCompleted,
		RunID: run.ID,
		Payload: events.RunCompletedPayload{
			TotalRecords:  ds.Report.Rows,
			Backlog:       backlog,
			StartSLA:      floatKPI(kpis, engine.MeasureStartSLA),
			CompletionSLA: floatKPI(kpis, engine.MeasureCompletionSLA),
			DurationMS:    duration.Milliseconds(),
		},
	})

	if s.analysis.BacklogAlert > 0 && backlog > s.analysis.BacklogAlert {
		s.publishEvent(ctx, events.Event{
			Type:  events.EventBacklogThreshold,
			RunID: run.ID,
			Payload: events.BacklogThresholdPayload{
				Backlog:   backlog,
				Threshold: s.analysis.BacklogAlert,
			},
		})
	}

	s.logger.Info("analysis run completed",
		zap.String("run_id", run.ID),
		zap.Int("records", ds.Report.Rows),
		zap.Int("backlog", backlog),
		zap.Duration("duration", duration),
	)
	return report, nil
}

// RunFromSource loads the raw table from the configured database source and
// runs the pipeline on it.
func (s *AnalysisService) RunFromSource(ctx context.Context, opts RunOptions) (*Report, error) {
	if s.source == nil {
		return nil, util.NewUnavailable("ticket source", nil)
	}
	table, err := s.source.FetchTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	if opts.Source == "" {
		opts.Source = s.sourceLabel
	}
	return s.Run(ctx, table, opts)
}

// LatestReport returns the most recent report as raw JSON, preferring the
// snapshot cache and falling back to the run store.
func (s *AnalysisService) LatestReport(ctx context.Context) (json.RawMessage, error) {
	if s.cache != nil {
		payload, err := s.cache.Latest(ctx)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", zap.Error(err))
		} else if payload != nil {
			return payload, nil
		}
	}

	if s.store == nil {
		return nil, util.NewNotFound("report", nil)
	}
	run, err := s.store.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.rebuildReport(ctx, run)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.StoreLatest(ctx, payload); err != nil {
			s.logger.Warn("unable to refresh report snapshot", zap.Error(err))
		}
	}
	return payload, nil
}

// RunReport reloads one stored run as a report.
func (s *AnalysisService) RunReport(ctx context.Context, runID string) (*Report, error) {
	if s.store == nil {
		return nil, util.NewUnavailable("run store", nil)
	}
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return s.rebuildReport(ctx, run)
}

// BreakdownFor returns the named dimensional table from the latest run.
func (s *AnalysisService) BreakdownFor(ctx context.Context, dimension string) (*engine.Breakdown, error) {
	if s.store == nil {
		return nil, util.NewUnavailable("run store", nil)
	}
	run, err := s.store.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetBreakdown(ctx, run.ID, dimension)
}

func (s *AnalysisService) rebuildReport(ctx context.Context, run *domain.AnalysisRun) (*Report, error) {
	kpis, err := s.store.GetKPIs(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	breakdowns, err := s.store.GetBreakdowns(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.store.GetMonthly(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	generated := run.StartedAt
	if run.FinishedAt != nil {
		generated = *run.FinishedAt
	}
	// Extracts and parse diagnostics are not persisted; a rebuilt report
	// carries the stored tables only.
	return &Report{
		RunID:           run.ID,
		GeneratedAt:     generated,
		ReferenceDate:   run.ReferenceInstant,
		Source:          run.Source,
		SLATarget:       run.SLATarget,
		CleanupTarget:   run.CleanupTarget,
		TotalRecords:    run.TotalRecords,
		MissingColumns:  run.MissingColumns,
		DegradedFields:  []string{},
		KPIs:            kpis,
		Breakdowns:      breakdowns,
		Monthly:         monthly,
		TopResponsibles: []engine.ResponsibleCount{},
	}, nil
}

func (s *AnalysisService) failRun(ctx context.Context, run *domain.AnalysisRun, started time.Time, cause error) {
	if s.metrics != nil {
		s.metrics.RecordRun("failed", time.Since(started), run.TotalRecords)
	}
	if s.store != nil {
		if err := s.store.FailRun(ctx, run.ID, cause.Error()); err != nil {
			s.logger.Warn("unable to mark run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:  events.EventRunFailed,
		RunID: run.ID,
		Payload: events.RunFailedPayload{
			Source: run.Source,
			Reason: cause.Error(),
		},
	})
}

func (s *AnalysisService) cacheReport(ctx context.Context, report *Report) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("unable to encode report snapshot", zap.Error(err))
		return
	}
	if err := s.cache.StoreLatest(ctx, payload); err != nil {
		s.logger.Warn("unable to cache report snapshot", zap.Error(err))
	}
}

func (s *AnalysisService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func degradedFieldNames(caps engine.Capabilities) []string {
	fields := caps.DegradedFields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, string(field))
	}
	return names
}

func intKPI(kpis engine.KPIMap, measure engine.Measure) int {
	if v, ok := kpis[measure].(int); ok {
		return v
	}
	return 0
}

func floatKPI(kpis engine.KPIMap, measure engine.Measure) float64 {
	if v, ok := kpis[measure].(float64); ok {
		return v
	}
	return 0
}
