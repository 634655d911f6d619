package models

import (
	"encoding/json"
	"time"
)

// Outcome is the terminal state of one symbol in a batch run.
type Outcome string

const (
	OutcomePersisted         Outcome = "persisted"
	OutcomeEmptyIntersection Outcome = "empty_intersection"
	OutcomeNoTimeframes      Outcome = "no_timeframes"
	OutcomePersistFailed     Outcome = "persist_failed"
)

// TimeframeFailure records why one timeframe of a symbol was skipped.
type TimeframeFailure struct {
	Timeframe Timeframe
	Err       error
}

// SymbolReport summarizes the processing of one symbol.
type SymbolReport struct {
	Symbol      string
	Outcome     Outcome
	Available   []Timeframe
	Unavailable []TimeframeFailure
	Rows        int
	Columns     int
	Locations   []string
	Err         error
	Duration    time.Duration
	FinishedAt  time.Time
}

// OK reports whether the symbol produced a persisted table.
func (r SymbolReport) OK() bool { return r.Outcome == OutcomePersisted }

type symbolReportJSON struct {
	Symbol      string            `json:"symbol"`
	Outcome     Outcome           `json:"outcome"`
	Available   []Timeframe       `json:"available"`
	Unavailable map[string]string `json:"unavailable,omitempty"`
	Rows        int               `json:"rows"`
	Columns     int               `json:"columns"`
	Locations   []string          `json:"locations,omitempty"`
	Error       string            `json:"error,omitempty"`
	DurationMs  int64             `json:"duration_ms"`
	FinishedAt  time.Time         `json:"finished_at"`
}

// MarshalJSON renders errors as strings so the report can be published as an event.
func (r SymbolReport) MarshalJSON() ([]byte, error) {
	out := symbolReportJSON{
		Symbol:     r.Symbol,
		Outcome:    r.Outcome,
		Available:  r.Available,
		Rows:       r.Rows,
		Columns:    r.Columns,
		Locations:  r.Locations,
		DurationMs: r.Duration.Milliseconds(),
		FinishedAt: r.FinishedAt,
	}
	if len(r.Unavailable) > 0 {
		out.Unavailable = make(map[string]string, len(r.Unavailable))
		for _, f := range r.Unavailable {
			msg := ""
			if f.Err != nil {
				msg = f.Err.Error()
			}
			out.Unavailable[string(f.Timeframe)] = msg
		}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
