package clickhouse

import "fmt"

// MergedFeaturesSchema returns the DDL for the long-format merged feature table.
// Re-running a symbol replaces its rows by (symbol, timeframe, feature, ts), keeping the latest run_at.
func MergedFeaturesSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s.%s (
            symbol    LowCardinality(String),
            timeframe LowCardinality(String),
            feature   LowCardinality(String),
            ts        DateTime64(3, 'UTC'),
            value     Float64,
            run_at    DateTime64(3, 'UTC')
        )
        ENGINE = ReplacingMergeTree(run_at)
        PARTITION BY (symbol, toYYYYMM(ts))
        ORDER BY (symbol, timeframe, feature, ts)
    `, database, table),
	}
}
