package repository

import "errors"

var (
	// ErrSourceUnavailable means a (symbol, timeframe) series does not exist or cannot be parsed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDuplicateTimestamp means a series repeats a timestamp and cannot be used as a join key.
	ErrDuplicateTimestamp = errors.New("duplicate timestamp")

	// ErrDuplicateTimeframe means two tables for the same timeframe were passed to a merge.
	ErrDuplicateTimeframe = errors.New("duplicate timeframe")

	// ErrEmptyIntersection means the available timeframes share no timestamp.
	ErrEmptyIntersection = errors.New("empty timestamp intersection")

	// ErrNoTimeframesAvailable means every timeframe of a symbol was unavailable.
	ErrNoTimeframesAvailable = errors.New("no timeframes available")
)
