package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FeatMerge/internal/domain/models"
	pkgch "FeatMerge/pkg/clickhouse"
	applogger "FeatMerge/pkg/logger"
)

// ClickHouseTableSink stores merged tables in long format, one row per
// (symbol, timeframe, feature, ts).
type ClickHouseTableSink struct {
	ch        *pkgch.Client
	db        *sql.DB
	table     string
	batchSize int
	now       func() time.Time
	l         *applogger.Logger
}

// NewClickHouseTableSink creates a sink writing to database.table. The sink owns the client.
func NewClickHouseTableSink(ch *pkgch.Client, database, table string, batchSize int) *ClickHouseTableSink {
	if batchSize <= 0 {
		batchSize = 2000
	}
	return &ClickHouseTableSink{
		ch:        ch,
		db:        ch.DB(),
		table:     database + "." + table,
		batchSize: batchSize,
		now:       time.Now,
		l:         applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (s *ClickHouseTableSink) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// Persist inserts every cell of the table.
func (s *ClickHouseTableSink) Persist(ctx context.Context, t *models.MergedTable) (string, error) {
	start := time.Now()
	location := "clickhouse://" + s.table + "?symbol=" + t.Symbol

	stmts := insertStatements(s.table, longRows(t, s.now().UTC()), s.batchSize)
	for i, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st.query, st.args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.String("symbol", t.Symbol),
				applogger.Int("chunk", i),
				applogger.Error(err),
			)
			return "", fmt.Errorf("insert merged features chunk %d: %w", i, err)
		}
	}

	s.l.Info("clickhouse insert ok",
		applogger.String("table", s.table),
		applogger.String("symbol", t.Symbol),
		applogger.Int("chunks", len(stmts)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return location, nil
}

// Close closes the underlying client.
func (s *ClickHouseTableSink) Close() error {
	return s.ch.Close()
}

type longRow struct {
	symbol    string
	timeframe string
	feature   string
	ts        time.Time
	value     float64
	runAt     time.Time
}

func longRows(t *models.MergedTable, runAt time.Time) []longRow {
	out := make([]longRow, 0, len(t.Rows)*len(t.Columns))
	for _, row := range t.Rows {
		for j, col := range t.Columns {
			out = append(out, longRow{
				symbol:    t.Symbol,
				timeframe: string(col.Timeframe),
				feature:   col.Feature,
				ts:        row.Time.UTC(),
				value:     row.Values[j],
				runAt:     runAt,
			})
		}
	}
	return out
}

type insertStatement struct {
	query string
	args  []interface{}
}

// insertStatements batches rows into multi-row VALUES inserts of at most size rows.
func insertStatements(table string, rows []longRow, size int) []insertStatement {
	if len(rows) == 0 {
		return nil
	}
	out := make([]insertStatement, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, r.symbol, r.timeframe, r.feature, r.ts, r.value, r.runAt)
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, timeframe, feature, ts, value, run_at) VALUES %s",
			table, strings.Join(values, ","))
		out = append(out, insertStatement{query: q, args: args})
	}
	return out
}
