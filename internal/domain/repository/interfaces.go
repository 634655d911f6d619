package repository

import (
	"context"

	"FeatMerge/internal/domain/models"
)

// OutcomePublisher announces per-symbol results to downstream consumers.
type OutcomePublisher interface {
	Publish(ctx context.Context, r models.SymbolReport) error
	Close() error
}

type Metrics interface {
	RecordSourceUnavailable(symbol string, tf models.Timeframe)
	RecordRowsDropped(tf models.Timeframe, reason string, n int)
	RecordRowsKept(tf models.Timeframe, n int)
	RecordOutcome(symbol string, outcome models.Outcome, rows int)
	RecordLatency(op string, seconds float64)
}
