package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FeatMerge/internal/domain/models"
	"FeatMerge/internal/usecase"
	"FeatMerge/pkg/config"
	applogger "FeatMerge/pkg/logger"
	"FeatMerge/pkg/metrics"
)

// App encapsulates the batch lifecycle: run every symbol once, report, flush metrics.
type App struct {
	cfg     *config.Config
	runner  *usecase.BatchRunner
	metrics *metrics.Recorder
	l       *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, runner *usecase.BatchRunner, rec *metrics.Recorder, l *applogger.Logger) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, runner: runner, metrics: rec, l: l}
}

// Run processes the batch and blocks until it is done or interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with a caller supplied context.
func (a *App) RunContext(ctx context.Context) error {
	start := time.Now()
	a.l.Info("batch started",
		applogger.Strings("symbols", a.cfg.Symbols),
		applogger.Strings("timeframes", a.cfg.Timeframes),
		applogger.Int("workers", a.cfg.Workers),
		applogger.String("data_dir", a.cfg.Data.Dir),
		applogger.String("output_dir", a.cfg.Output.Dir),
	)

	reports, err := a.runner.Run(ctx)

	counts := Summarize(reports)
	a.l.Info("batch finished",
		applogger.Int("symbols", len(reports)),
		applogger.Int(string(models.OutcomePersisted), counts[models.OutcomePersisted]),
		applogger.Int(string(models.OutcomeEmptyIntersection), counts[models.OutcomeEmptyIntersection]),
		applogger.Int(string(models.OutcomeNoTimeframes), counts[models.OutcomeNoTimeframes]),
		applogger.Int(string(models.OutcomePersistFailed), counts[models.OutcomePersistFailed]),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	if failed := NotPersisted(reports); len(failed) > 0 {
		a.l.Warn("symbols not persisted", applogger.Strings("symbols", failed))
	}

	if path := a.cfg.Metrics.Textfile; path != "" && a.metrics != nil {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.l.Error("metrics flush failed", applogger.String("path", path), applogger.Error(werr))
		}
	}
	if err != nil {
		a.l.Error("batch interrupted", applogger.Error(err))
	}
	return err
}

// Summarize counts reports per outcome.
func Summarize(reports []models.SymbolReport) map[models.Outcome]int {
	out := make(map[models.Outcome]int, 4)
	for _, r := range reports {
		out[r.Outcome]++
	}
	return out
}

// NotPersisted lists, in report order, the symbols whose table was not written.
func NotPersisted(reports []models.SymbolReport) []string {
	var out []string
	for _, r := range reports {
		if !r.OK() {
			out = append(out, r.Symbol)
		}
	}
	return out
}
