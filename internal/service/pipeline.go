package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/eloca-metrics/internal/apperr"
	"github.com/godilite/eloca-metrics/internal/columns"
	"github.com/godilite/eloca-metrics/internal/csat"
	"github.com/godilite/eloca-metrics/internal/metrics"
	"github.com/godilite/eloca-metrics/internal/report"
	"github.com/godilite/eloca-metrics/internal/sheet"
	"github.com/godilite/eloca-metrics/internal/source"
	"github.com/godilite/eloca-metrics/internal/telemetry"
)

const (
	maxLoggedRowKeys = 5

	WarnFetch     = "fetch"
	WarnLoad      = "load"
	WarnSchema    = "schema"
	WarnParse     = "parse"
	WarnIntegrity = "integrity"
	WarnEstimated = "estimated"
)

// Options selects the two reports and the tables a run must produce.
type Options struct {
	Operational    source.Source
	Survey         source.Source
	ExpectedTables []string
}

// Pipeline fetches both reports and turns them into a table bag.
type Pipeline struct {
	fetcher    Fetcher
	loader     Loader
	aggregator Aggregator
	dedup      *csat.Deduplicator
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(fetcher Fetcher, loader Loader, aggregator Aggregator, opts Options, logger *zap.Logger) *Pipeline {
	if fetcher == nil {
		panic("fetcher must not be nil")
	}
	if loader == nil {
		panic("loader must not be nil")
	}
	if aggregator == nil {
		panic("aggregator must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if len(opts.ExpectedTables) == 0 {
		opts.ExpectedTables = report.TableNames
	}
	return &Pipeline{
		fetcher:    fetcher,
		loader:     loader,
		aggregator: aggregator,
		dedup:      csat.NewDeduplicator(logger),
		opts:       opts,
		logger:     logger.Named("pipeline"),
		now:        time.Now,
	}
}

// loaded is one source after fetch and load.
type loaded struct {
	table  *sheet.Table
	failed bool
}

func (l loaded) absent() bool {
	return l.failed || l.table.IsEmpty()
}

// Run executes fetch, clean, deduplicate and aggregate. A source that
// cannot be fetched or read degrades to an empty table; only the absence
// of both sources fails the run, with apperr.ErrNoData.
func (p *Pipeline) Run(ctx context.Context) (*report.Bag, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	bag := report.NewBag(runID, p.now())

	logger.Info("pipeline run started")

	var opRaw, svRaw []byte
	var opErr, svErr error
	var g errgroup.Group
	g.Go(func() error {
		opRaw, opErr = p.fetcher.Fetch(ctx, p.opts.Operational)
		return nil
	})
	g.Go(func() error {
		svRaw, svErr = p.fetcher.Fetch(ctx, p.opts.Survey)
		return nil
	})
	_ = g.Wait()

	op := p.load(logger, bag, p.opts.Operational, opRaw, opErr)
	sv := p.load(logger, bag, p.opts.Survey, svRaw, svErr)

	if op.absent() && sv.absent() {
		telemetry.PipelineRunsTotal.WithLabelValues("no_data").Inc()
		logger.Warn("no data from any source",
			zap.Bool("operational_failed", op.failed),
			zap.Bool("csat_failed", sv.failed))
		return nil, fmt.Errorf("%w: %s and %s are both empty or unavailable",
			apperr.ErrNoData, p.opts.Operational.Name, p.opts.Survey.Name)
	}

	tickets, surveys, err := p.process(ctx, logger, bag, op, sv)
	if err != nil {
		telemetry.PipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := bag.Validate(p.opts.ExpectedTables); err != nil {
		telemetry.PipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	telemetry.PipelineRunsTotal.WithLabelValues("ok").Inc()
	telemetry.PipelineDurationSeconds.Observe(elapsed.Seconds())
	logger.Info("pipeline run finished",
		zap.Int("tickets", tickets),
		zap.Int("surveys", surveys),
		zap.Int("warnings", len(bag.Warnings)),
		zap.Duration("elapsed", elapsed))

	return bag, nil
}

func (p *Pipeline) load(logger *zap.Logger, bag *report.Bag, src source.Source, data []byte, fetchErr error) loaded {
	if fetchErr != nil {
		telemetry.FetchFailuresTotal.WithLabelValues(src.Name).Inc()
		logger.Warn("source unavailable, continuing without it",
			zap.String("source", src.Name),
			zap.Error(fetchErr))
		bag.Warn(report.Warning{Kind: WarnFetch, Source: src.Name, Message: fetchErr.Error()})
		bag.Sources = append(bag.Sources, report.SourceStatus{Name: src.Name, Failed: true})
		return loaded{table: sheet.Empty(src.Name), failed: true}
	}

	tbl, err := p.loader.Load(src.Name, data, src.Sheet)
	if err != nil {
		logger.Warn("source could not be read, continuing without it",
			zap.String("source", src.Name),
			zap.String("sheet", src.Sheet),
			zap.Error(err))
		bag.Warn(report.Warning{Kind: WarnLoad, Source: src.Name, Message: err.Error()})
		bag.Sources = append(bag.Sources, report.SourceStatus{Name: src.Name, Failed: true})
		return loaded{table: sheet.Empty(src.Name), failed: true}
	}

	telemetry.SourceRows.WithLabelValues(src.Name).Set(float64(tbl.Len()))
	bag.Sources = append(bag.Sources, report.SourceStatus{Name: src.Name, Rows: tbl.Len()})
	logger.Debug("source loaded",
		zap.String("source", src.Name),
		zap.Int("rows", tbl.Len()),
		zap.Strings("headers", tbl.Headers))
	return loaded{table: tbl}
}

func (p *Pipeline) process(ctx context.Context, logger *zap.Logger, bag *report.Bag, op, sv loaded) (int, int, error) {
	opBinding, opOK := p.bind(logger, bag, columns.OperationalSchema(p.opts.Operational.Name), op)
	var clean cleaned
	if opOK {
		clean = cleanOperational(op.table, opBinding)
		p.reportParseErrors(logger, bag, clean.parseErrors)
	}

	responses := p.survey(logger, bag, sv)
	surveys := surveyRecords(responses, agentsByTicket(clean.records))

	if !opOK {
		return 0, len(surveys), nil
	}

	res, err := p.aggregator.Aggregate(ctx, metrics.Input{
		Tickets:          clean.records,
		Surveys:          surveys,
		HasSLAFirst:      clean.hasSLAFirst,
		HasSLAResolution: clean.hasSLAResolution,
	})
	if err != nil {
		logger.Error("failed to aggregate metrics", zap.Error(err))
		return 0, 0, fmt.Errorf("aggregate: %w", err)
	}

	for _, w := range res.Warnings {
		logger.Warn("estimated metric", zap.String("detail", w))
		bag.Warn(report.Warning{Kind: WarnEstimated, Source: p.opts.Operational.Name, Message: w})
	}

	agentTbl := report.AgentGoalsTable(res.Agents, res.Goals)
	areaTwo := report.AreaTwoTable(res.SLA)
	chartOne := report.ChartTable(report.TableChartOne, res.ChartOne, true)
	for _, t := range []*report.Table{&agentTbl, &areaTwo, &chartOne} {
		if t.Estimated {
			t.Warnings = append(t.Warnings, res.Warnings...)
		}
	}

	bag.Put(agentTbl)
	bag.Put(report.AreaOneTable(res.ServiceTimes))
	bag.Put(areaTwo)
	bag.Put(chartOne)
	bag.Put(report.ChartTable(report.TableChartTwo, res.ChartTwo, false))

	return len(clean.records), len(surveys), nil
}

// bind resolves a schema against a loaded source. Unresolved columns are
// recorded as warnings; ok is false when a required one is missing, in
// which case every table derived from the source stays empty.
func (p *Pipeline) bind(logger *zap.Logger, bag *report.Bag, schema columns.Schema, l loaded) (columns.Binding, bool) {
	if l.absent() {
		return columns.Binding{}, false
	}

	binding, errs := schema.Bind(l.table.Headers)
	for _, e := range errs {
		telemetry.SchemaWarningsTotal.WithLabelValues(e.Source, e.Column).Inc()
		logger.Warn("column not resolved",
			zap.String("source", e.Source),
			zap.String("column", e.Column),
			zap.Bool("required", e.Required))
		bag.Warn(report.Warning{Kind: WarnSchema, Source: e.Source, Column: e.Column, Message: e.Error()})
	}
	return binding, len(columns.RequiredMissing(errs)) == 0
}

func (p *Pipeline) reportParseErrors(logger *zap.Logger, bag *report.Bag, errs []*apperr.ParseError) {
	byColumn := lo.GroupBy(errs, func(e *apperr.ParseError) string { return e.Column })
	for _, col := range lo.Uniq(lo.Map(errs, func(e *apperr.ParseError, _ int) string { return e.Column })) {
		group := byColumn[col]
		telemetry.ParseErrorsTotal.WithLabelValues(group[0].Source, col).Add(float64(len(group)))

		sample := lo.Slice(group, 0, maxLoggedRowKeys)
		logger.Warn("cells could not be parsed",
			zap.String("source", group[0].Source),
			zap.String("column", col),
			zap.Int("count", len(group)),
			zap.Strings("row_keys", lo.Map(sample, func(e *apperr.ParseError, _ int) string { return e.RowKey })),
			zap.Strings("values", lo.Map(sample, func(e *apperr.ParseError, _ int) string { return e.Value })))
		bag.Warn(report.Warning{
			Kind:    WarnParse,
			Source:  group[0].Source,
			Column:  col,
			Message: fmt.Sprintf("%d cells could not be parsed (first: %s)", len(group), group[0].Error()),
		})
	}
}

// survey validates and deduplicates the CSAT report and fills its tables.
func (p *Pipeline) survey(logger *zap.Logger, bag *report.Bag, sv loaded) []surveyResponse {
	binding, ok := p.bind(logger, bag, columns.SurveySchema(p.opts.Survey.Name), sv)
	if sv.absent() {
		return nil
	}

	if ok {
		for _, msg := range csat.Validate(sv.table, binding).Warnings() {
			logger.Warn("survey integrity", zap.String("detail", msg))
			bag.Warn(report.Warning{Kind: WarnIntegrity, Source: sv.table.Source, Message: msg})
		}
	}

	// Without ticket or rating the survey is published as read.
	res, err := p.dedup.Deduplicate(sv.table, binding)
	if err != nil {
		var schemaErr *apperr.SchemaError
		if errors.As(err, &schemaErr) {
			logger.Warn("survey not deduplicated", zap.Error(err))
		} else {
			logger.Error("unexpected deduplication failure", zap.Error(err))
			bag.Warn(report.Warning{Kind: WarnSchema, Source: sv.table.Source, Message: err.Error()})
		}
		bag.Put(report.CSATTable(res))
		return nil
	}
	telemetry.CSATDuplicatesRemoved.Set(float64(res.Removed()))

	bag.Put(report.CSATTable(res))
	bag.Put(report.CSATMetricsTable(csat.ComputeMetrics(res.Responses)))
	bag.Put(report.CSATReportTable(csat.BuildReport(res)))
	bag.Put(report.CSATAuditTable(res.Audit))

	return lo.Map(res.Responses, func(r csat.Response, _ int) surveyResponse {
		return surveyResponse{
			ticket:   r.Ticket,
			agent:    r.Agent,
			rating:   r.Rating.String(),
			positive: r.Rating.Positive(),
		}
	})
}
