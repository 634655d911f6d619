package repository

import (
	"context"

	"FeatMerge/internal/domain/models"
)

// BarSource provides the raw OHLCV series of one (symbol, timeframe).
// Implementations return an error wrapping ErrSourceUnavailable when the series
// cannot be located or its header cannot be understood.
type BarSource interface {
	LoadBars(ctx context.Context, symbol string, tf models.Timeframe) ([]models.RawBar, error)
}

// TableSink persists merged tables. Persist returns where the table was written.
type TableSink interface {
	Persist(ctx context.Context, t *models.MergedTable) (string, error)
	Close() error
}
