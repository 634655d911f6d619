package models

import "time"

// Timeframe is a bar sampling interval label such as "15m", "1h" or "1d".
// The label is used verbatim as the column suffix in merged tables.
type Timeframe string

func (tf Timeframe) String() string { return string(tf) }

// FeatureRow is one timestamped row of a FeatureTable. Values are aligned with FeatureTable.Names.
type FeatureRow struct {
	Time   time.Time
	Values []float64
}

// FeatureTable holds the complete feature rows of one (symbol, timeframe) series.
// Rows are strictly increasing by Time and contain no undefined values.
type FeatureTable struct {
	Symbol    string
	Timeframe Timeframe
	Names     []string
	Rows      []FeatureRow
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of a feature name, or -1.
func (t *FeatureTable) Index(name string) int {
	for i, n := range t.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Value returns the value of feature name in row i.
func (t *FeatureTable) Value(i int, name string) (float64, bool) {
	j := t.Index(name)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return 0, false
	}
	return t.Rows[i].Values[j], true
}
