package repository

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatMerge/internal/domain/models"
)

func sampleMerged() *models.MergedTable {
	t0 := time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC)
	return &models.MergedTable{
		Symbol: "EURUSD",
		Columns: []models.ColumnKey{
			{Timeframe: "1h", Feature: "close"},
			{Timeframe: "1h", Feature: "sma_20"},
			{Timeframe: "4h", Feature: "close"},
		},
		Rows: []models.MergedRow{
			{Time: t0, Values: []float64{1.1035, 1.10212, 1.104}},
			{Time: t0.Add(4 * time.Hour), Values: []float64{1.1, 1.10188, 0.5}},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestCSVTableSink_Persist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "merged_data")
	sink := NewCSVTableSink(dir, "_merged.csv", "timestamp", "2006-01-02 15:04:05")

	loc, err := sink.Persist(context.Background(), sampleMerged())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "EURUSD_merged.csv"), loc)

	recs := readCSV(t, loc)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"timestamp", "close_1h", "sma_20_1h", "close_4h"}, recs[0])
	assert.Equal(t, []string{"2024-01-02 04:00:00", "1.1035", "1.10212", "1.104"}, recs[1])
	assert.Equal(t, []string{"2024-01-02 08:00:00", "1.1", "1.10188", "0.5"}, recs[2])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCSVTableSink_OverwritesAndWritesHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	sink := NewCSVTableSink(dir, ".csv", "ts", time.RFC3339)
	ctx := context.Background()

	_, err := sink.Persist(ctx, sampleMerged())
	require.NoError(t, err)

	empty := sampleMerged()
	empty.Rows = nil
	loc, err := sink.Persist(ctx, empty)
	require.NoError(t, err)

	recs := readCSV(t, loc)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"ts", "close_1h", "sma_20_1h", "close_4h"}, recs[0])
	require.NoError(t, sink.Close())
}

func TestCSVTableSink_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	sink := NewCSVTableSink(file, ".csv", "ts", time.RFC3339)
	_, err := sink.Persist(context.Background(), sampleMerged())
	assert.Error(t, err)
}

func TestCSVTableSink_OutputIsWorldReadable(t *testing.T) {
	sink := NewCSVTableSink(t.TempDir(), "_merged.csv", "timestamp", time.RFC3339)

	loc, err := sink.Persist(context.Background(), sampleMerged())
	require.NoError(t, err)

	info, err := os.Stat(loc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
