package features

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
	"FeatMerge/internal/services/indicators"
	applogger "FeatMerge/pkg/logger"
)

// Windows configures indicator lookbacks.
type Windows struct {
	SMA        int
	EMA        int
	Bollinger  int
	BollingerK float64
	VolumeMA   int
}

// DefaultWindows returns the 20-bar windows and k=2 bands.
func DefaultWindows() Windows {
	return Windows{SMA: 20, EMA: 20, Bollinger: 20, BollingerK: 2, VolumeMA: 20}
}

// BuildStats counts what happened to the rows of one source.
type BuildStats struct {
	Read      int
	Malformed int
	WarmUp    int
	Kept      int
	Resorted  bool
}

type column struct {
	name   string
	values []float64
}

// Extractor builds complete feature tables for one (symbol, timeframe) at a time.
type Extractor struct {
	source  domrepo.BarSource
	windows Windows
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewExtractor(source domrepo.BarSource, windows Windows, metrics domrepo.Metrics) *Extractor {
	return &Extractor{source: source, windows: windows, metrics: metrics, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (e *Extractor) SetLogger(l *applogger.Logger) { e.l = l }

// Names returns the feature columns produced for every timeframe, in output order.
func (e *Extractor) Names() []string {
	w := e.windows
	return []string{
		"open", "high", "low", "close", "volume",
		"momentum_pct_change",
		"sma_" + strconv.Itoa(w.SMA),
		"ema_" + strconv.Itoa(w.EMA),
		"bb_upper", "bb_lower", "bb_width",
		"volume_ma_" + strconv.Itoa(w.VolumeMA),
		"candle_body", "candle_range",
	}
}

// Build loads one source and returns its feature table. Any failure to load or
// order the series is reported as ErrSourceUnavailable.
func (e *Extractor) Build(ctx context.Context, symbol string, tf models.Timeframe) (*models.FeatureTable, BuildStats, error) {
	start := time.Now()
	bars, err := e.source.LoadBars(ctx, symbol, tf)
	if err != nil {
		if !errors.Is(err, domrepo.ErrSourceUnavailable) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %s_%s: %w", domrepo.ErrSourceUnavailable, symbol, tf, err)
		}
		return nil, BuildStats{}, err
	}

	table, stats, err := e.FromBars(symbol, tf, bars)
	if err != nil {
		return nil, stats, err
	}

	if e.metrics != nil {
		e.metrics.RecordRowsDropped(tf, "malformed", stats.Malformed)
		e.metrics.RecordRowsDropped(tf, "warmup", stats.WarmUp)
		e.metrics.RecordRowsKept(tf, stats.Kept)
		e.metrics.RecordLatency("build", time.Since(start).Seconds())
	}
	if stats.Resorted {
		e.l.Warn("source not sorted by time, sorted before computing features",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
		)
	}
	e.l.Debug("feature table built",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("read", stats.Read),
		applogger.Int("malformed", stats.Malformed),
		applogger.Int("warmup", stats.WarmUp),
		applogger.Int("rows", stats.Kept),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return table, stats, nil
}

// FromBars computes the feature table of an in-memory series.
//
// Malformed bars are dropped before any indicator sees them, then every row with
// an undefined feature (warm-up rows) is dropped, so the result has no undefined cell.
func (e *Extractor) FromBars(symbol string, tf models.Timeframe, bars []models.RawBar) (*models.FeatureTable, BuildStats, error) {
	stats := BuildStats{Read: len(bars)}

	clean := make([]models.RawBar, 0, len(bars))
	for _, b := range bars {
		if b.Malformed() {
			stats.Malformed++
			continue
		}
		clean = append(clean, b)
	}

	if !sort.SliceIsSorted(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) }) {
		sort.SliceStable(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })
		stats.Resorted = true
	}
	for i := 1; i < len(clean); i++ {
		if clean[i].Time.Equal(clean[i-1].Time) {
			return nil, stats, fmt.Errorf("%w: %s_%s: %w at %s",
				domrepo.ErrSourceUnavailable, symbol, tf, domrepo.ErrDuplicateTimestamp,
				clean[i].Time.Format(time.RFC3339))
		}
	}

	cols := e.columns(clean)
	names := make([]string, len(cols))
	for j, c := range cols {
		names[j] = c.name
	}

	table := &models.FeatureTable{Symbol: symbol, Timeframe: tf, Names: names}
	for i := range clean {
		if !complete(cols, i) {
			stats.WarmUp++
			continue
		}
		values := make([]float64, len(cols))
		for j, c := range cols {
			values[j] = c.values[i]
		}
		table.Rows = append(table.Rows, models.FeatureRow{Time: clean[i].Time, Values: values})
	}
	stats.Kept = len(table.Rows)
	return table, stats, nil
}

func (e *Extractor) columns(bars []models.RawBar) []column {
	n := len(bars)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		open[i], high[i], low[i], closes[i], volume[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}

	w := e.windows
	bands := indicators.Bollinger(closes, w.Bollinger, w.BollingerK)
	names := e.Names()
	series := [][]float64{
		open, high, low, closes, volume,
		indicators.PctChange(closes),
		indicators.SMA(closes, w.SMA),
		indicators.EMA(closes, w.EMA),
		bands.Upper,
		bands.Lower,
		bands.Width(),
		indicators.RollingMean(volume, w.VolumeMA),
		indicators.AbsDiff(closes, open),
		indicators.Sub(high, low),
	}

	out := make([]column, len(names))
	for j := range names {
		out[j] = column{name: names[j], values: series[j]}
	}
	return out
}

func complete(cols []column, i int) bool {
	for _, c := range cols {
		if indicators.IsUndefined(c.values[i]) {
			return false
		}
	}
	return true
}
