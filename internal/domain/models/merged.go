package models

import "time"

// ColumnKey identifies a merged column by its source timeframe and feature name.
type ColumnKey struct {
	Timeframe Timeframe
	Feature   string
}

// String flattens the key to "<feature>_<timeframe>". Only sinks should need this form.
func (k ColumnKey) String() string {
	return k.Feature + "_" + string(k.Timeframe)
}

// MergedRow is one aligned timestamp with values for every column of the MergedTable.
type MergedRow struct {
	Time   time.Time
	Values []float64
}

// MergedTable is the inner join of all available timeframes of one symbol.
type MergedTable struct {
	Symbol  string
	Columns []ColumnKey
	Rows    []MergedRow
}

// Empty reports whether the table has no rows to persist.
func (t *MergedTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnNames returns the flattened column names in order.
func (t *MergedTable) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.String()
	}
	return out
}

// Timeframes returns the distinct timeframes in column order.
func (t *MergedTable) Timeframes() []Timeframe {
	var out []Timeframe
	for _, c := range t.Columns {
		if len(out) == 0 || out[len(out)-1] != c.Timeframe {
			out = append(out, c.Timeframe)
		}
	}
	return out
}
