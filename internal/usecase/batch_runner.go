package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
	"FeatMerge/internal/services/features"
	applogger "FeatMerge/pkg/logger"
	"FeatMerge/pkg/util"
)

// FrameBuilder produces the feature table of one (symbol, timeframe).
type FrameBuilder interface {
	Build(ctx context.Context, symbol string, tf models.Timeframe) (*models.FeatureTable, features.BuildStats, error)
}

// TableMerger joins the feature tables of one symbol.
type TableMerger interface {
	Merge(symbol string, tables []*models.FeatureTable) (*models.MergedTable, error)
}

// RunnerOptions selects what a batch processes.
type RunnerOptions struct {
	Symbols    []string
	Timeframes []models.Timeframe
	Workers    int
	// WriteEmpty persists header-only tables for symbols whose timeframes share no timestamp.
	WriteEmpty bool
}

// BatchRunner builds, merges and persists every configured symbol.
type BatchRunner struct {
	builder FrameBuilder
	merger  TableMerger
	sink    domrepo.TableSink
	pub     domrepo.OutcomePublisher
	metrics domrepo.Metrics
	opts    RunnerOptions
	l       *applogger.Logger
}

// NewBatchRunner creates a runner. pub and metrics may be nil.
func NewBatchRunner(
	builder FrameBuilder,
	merger TableMerger,
	sink domrepo.TableSink,
	pub domrepo.OutcomePublisher,
	metrics domrepo.Metrics,
	opts RunnerOptions,
) *BatchRunner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &BatchRunner{
		builder: builder,
		merger:  merger,
		sink:    sink,
		pub:     pub,
		metrics: metrics,
		opts:    opts,
		l:       applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (r *BatchRunner) SetLogger(l *applogger.Logger) {
	if l != nil {
		r.l = l
	}
}

// Run processes every symbol and returns one report per symbol in configured order.
// A failing symbol never stops the batch; only cancellation of ctx is returned as an error.
func (r *BatchRunner) Run(ctx context.Context) ([]models.SymbolReport, error) {
	start := time.Now()
	reports := make([]models.SymbolReport, len(r.opts.Symbols))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, symbol := range r.opts.Symbols {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			reports[i] = r.ProcessSymbol(ctx, symbol)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		done := reports[:0]
		for _, rep := range reports {
			if rep.Outcome != "" {
				done = append(done, rep)
			}
		}
		r.l.Warn("batch cancelled",
			applogger.Int("completed", len(done)),
			applogger.Int("symbols", len(r.opts.Symbols)),
			applogger.Error(err),
		)
		return done, err
	}

	r.observe("batch", start)
	return reports, nil
}

// ProcessSymbol runs one symbol end to end. The report carries no outcome when ctx was cancelled.
func (r *BatchRunner) ProcessSymbol(ctx context.Context, symbol string) models.SymbolReport {
	start := time.Now()
	rep := models.SymbolReport{Symbol: symbol}
	l := r.l.With(applogger.String("symbol", symbol))

	tables, errs := r.buildAll(ctx, symbol)
	if err := ctx.Err(); err != nil {
		rep.Err = err
		return rep
	}

	available := make([]*models.FeatureTable, 0, len(tables))
	for i, tf := range r.opts.Timeframes {
		if errs[i] != nil {
			rep.Unavailable = append(rep.Unavailable, models.TimeframeFailure{Timeframe: tf, Err: errs[i]})
			if r.metrics != nil {
				r.metrics.RecordSourceUnavailable(symbol, tf)
			}
			l.Warn("timeframe unavailable", applogger.String("tf", string(tf)), applogger.Error(errs[i]))
			continue
		}
		rep.Available = append(rep.Available, tf)
		available = append(available, tables[i])
	}

	switch {
	case len(available) == 0:
		rep.Outcome = models.OutcomeNoTimeframes
		rep.Err = domrepo.ErrNoTimeframesAvailable
	default:
		r.mergeAndPersist(ctx, &rep, available)
	}

	rep.Duration = time.Since(start)
	rep.FinishedAt = time.Now()
	r.finish(ctx, l, rep)
	return rep
}

// buildAll loads every timeframe concurrently. Results are indexed like opts.Timeframes.
func (r *BatchRunner) buildAll(ctx context.Context, symbol string) ([]*models.FeatureTable, []error) {
	tfs := r.opts.Timeframes
	tables := make([]*models.FeatureTable, len(tfs))
	errs := make([]error, len(tfs))

	var g errgroup.Group
	for i, tf := range tfs {
		g.Go(func() error {
			t, stats, err := r.builder.Build(ctx, symbol, tf)
			if err != nil {
				errs[i] = err
				return nil
			}
			if t.Len() == 0 {
				r.l.Warn("timeframe has no complete rows",
					applogger.String("symbol", symbol),
					applogger.String("tf", string(tf)),
					applogger.Int("read", stats.Read),
					applogger.Int("malformed", stats.Malformed),
					applogger.Int("warm_up", stats.WarmUp),
				)
			}
			tables[i] = t
			return nil
		})
	}
	_ = g.Wait()
	return tables, errs
}

func (r *BatchRunner) mergeAndPersist(ctx context.Context, rep *models.SymbolReport, tables []*models.FeatureTable) {
	mstart := time.Now()
	merged, err := r.merger.Merge(rep.Symbol, tables)
	r.observe("merge", mstart)
	if err != nil {
		// Timeframes are unique by construction; a merge error means nothing can be written.
		rep.Outcome = models.OutcomePersistFailed
		rep.Err = fmt.Errorf("merge: %w", err)
		return
	}
	rep.Rows = len(merged.Rows)
	rep.Columns = len(merged.Columns)

	if merged.Empty() {
		rep.Outcome = models.OutcomeEmptyIntersection
		rep.Err = domrepo.ErrEmptyIntersection
		if !r.opts.WriteEmpty {
			return
		}
	}

	pstart := time.Now()
	loc, err := r.sink.Persist(ctx, merged)
	r.observe("persist", pstart)
	rep.Locations = util.SplitList(loc)
	if err != nil {
		rep.Outcome = models.OutcomePersistFailed
		rep.Err = errors.Join(rep.Err, fmt.Errorf("persist: %w", err))
		return
	}
	if rep.Outcome == "" {
		rep.Outcome = models.OutcomePersisted
	}
}

func (r *BatchRunner) finish(ctx context.Context, l *applogger.Logger, rep models.SymbolReport) {
	if r.metrics != nil {
		r.metrics.RecordOutcome(rep.Symbol, rep.Outcome, rep.Rows)
		r.metrics.RecordLatency("symbol", rep.Duration.Seconds())
	}

	fields := []applogger.Field{
		applogger.String("outcome", string(rep.Outcome)),
		applogger.Int("rows", rep.Rows),
		applogger.Int("columns", rep.Columns),
		applogger.Int("available", len(rep.Available)),
		applogger.Int("unavailable", len(rep.Unavailable)),
		applogger.Strings("locations", rep.Locations),
		applogger.Duration("duration_ms", rep.Duration),
	}
	switch rep.Outcome {
	case models.OutcomePersisted:
		l.Info("symbol merged", fields...)
	case models.OutcomePersistFailed:
		l.Error("symbol not persisted", append(fields, applogger.Error(rep.Err))...)
	default:
		l.Warn("symbol produced no rows", append(fields, applogger.Error(rep.Err))...)
	}

	if r.pub == nil {
		return
	}
	if err := r.pub.Publish(ctx, rep); err != nil {
		l.Warn("publish outcome failed", applogger.Error(err))
	}
}

func (r *BatchRunner) observe(op string, start time.Time) {
	if r.metrics != nil {
		r.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}
