package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
)

var t0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// table builds n rows every step starting at start; each value encodes (row, column).
func table(tf models.Timeframe, names []string, start time.Time, step time.Duration, n int) *models.FeatureTable {
	t := &models.FeatureTable{Symbol: "EURUSD", Timeframe: tf, Names: names}
	for i := 0; i < n; i++ {
		values := make([]float64, len(names))
		for j := range names {
			values[j] = float64(i*100 + j)
		}
		t.Rows = append(t.Rows, models.FeatureRow{Time: start.Add(time.Duration(i) * step), Values: values})
	}
	return t
}

func TestMerge_NoTables(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h"})
	got, err := m.Merge("EURUSD", nil)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", got.Symbol)
	assert.True(t, got.Empty())
	assert.Empty(t, got.Columns)
}

func TestMerge_SingleTableIsSuffixedPassthrough(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h"})
	in := table("4h", []string{"close", "sma_20"}, t0, 4*time.Hour, 5)

	got, err := m.Merge("USDJPY", []*models.FeatureTable{in})
	require.NoError(t, err)
	assert.Equal(t, []string{"close_4h", "sma_20_4h"}, got.ColumnNames())
	require.Len(t, got.Rows, 5)
	for i, r := range got.Rows {
		assert.Equal(t, in.Rows[i].Time, r.Time)
		assert.Equal(t, in.Rows[i].Values, r.Values)
	}
}

func TestMerge_InnerJoinHourlyAndFourHourly(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h"})
	h1 := table("1h", []string{"close", "sma_20"}, t0, time.Hour, 100)
	h4 := table("4h", []string{"close", "sma_20"}, t0, 4*time.Hour, 25)

	got, err := m.Merge("EURUSD", []*models.FeatureTable{h1, h4})
	require.NoError(t, err)

	assert.Equal(t, []string{"close_1h", "sma_20_1h", "close_4h", "sma_20_4h"}, got.ColumnNames())
	require.Len(t, got.Rows, 25)
	for k, r := range got.Rows {
		assert.Equal(t, t0.Add(time.Duration(4*k)*time.Hour), r.Time)
		// 1h row 4k, then 4h row k.
		assert.Equal(t, []float64{float64(4*k*100 + 0), float64(4*k*100 + 1), float64(k * 100), float64(k*100 + 1)}, r.Values)
	}
}

func TestMerge_ColumnOrderFollowsConfiguredOrder(t *testing.T) {
	m := NewMerger([]models.Timeframe{"15m", "1h", "1d"})
	d1 := table("1d", []string{"x"}, t0, 24*time.Hour, 3)
	h1 := table("1h", []string{"x"}, t0, time.Hour, 72)
	m15 := table("15m", []string{"x"}, t0, 15*time.Minute, 288)

	got, err := m.Merge("EURUSD", []*models.FeatureTable{d1, h1, m15})
	require.NoError(t, err)
	assert.Equal(t, []string{"x_15m", "x_1h", "x_1d"}, got.ColumnNames())
	assert.Equal(t, []models.Timeframe{"15m", "1h", "1d"}, got.Timeframes())
	assert.Len(t, got.Rows, 3)
}

func TestMerge_IdenticalFeatureNamesDoNotCollide(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h"})
	names := []string{"sma_20", "ema_20", "bb_width"}
	got, err := m.Merge("EURUSD", []*models.FeatureTable{
		table("1h", names, t0, time.Hour, 8),
		table("4h", names, t0, 4*time.Hour, 2),
	})
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, c := range got.Columns {
		name := got.ColumnNames()[i]
		assert.False(t, seen[name], "duplicate column %s", name)
		seen[name] = true
		assert.Equal(t, name, c.Feature+"_"+string(c.Timeframe))
	}
	assert.Len(t, seen, 6)
	assert.True(t, seen["sma_20_1h"])
	assert.True(t, seen["sma_20_4h"])
}

func TestMerge_DisjointKeysKeepColumns(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h"})
	got, err := m.Merge("EURUSD", []*models.FeatureTable{
		table("1h", []string{"a", "b"}, t0, time.Hour, 10),
		table("4h", []string{"a"}, t0.Add(30*time.Minute), 4*time.Hour, 10),
	})
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.Equal(t, []string{"a_1h", "b_1h", "a_4h"}, got.ColumnNames())
}

func TestMerge_EmptyTableEmptiesResult(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h", "1d"})
	got, err := m.Merge("EURUSD", []*models.FeatureTable{
		table("1h", []string{"a"}, t0, time.Hour, 10),
		table("4h", []string{"a"}, t0, 4*time.Hour, 0),
		table("1d", []string{"a"}, t0, 24*time.Hour, 1),
	})
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.Len(t, got.Columns, 3)
}

func TestMerge_JoinOrderDoesNotChangeRows(t *testing.T) {
	a := table("1h", []string{"a"}, t0, time.Hour, 48)
	b := table("3h", []string{"b"}, t0.Add(time.Hour), 3*time.Hour, 16)

	ab, err := NewMerger([]models.Timeframe{"1h", "3h"}).Merge("X", []*models.FeatureTable{a, b})
	require.NoError(t, err)
	ba, err := NewMerger([]models.Timeframe{"3h", "1h"}).Merge("X", []*models.FeatureTable{a, b})
	require.NoError(t, err)

	require.Equal(t, len(ab.Rows), len(ba.Rows))
	assert.Equal(t, []string{"a_1h", "b_3h"}, ab.ColumnNames())
	assert.Equal(t, []string{"b_3h", "a_1h"}, ba.ColumnNames())
	for i := range ab.Rows {
		assert.Equal(t, ab.Rows[i].Time, ba.Rows[i].Time)
		assert.Equal(t, ab.Rows[i].Values[0], ba.Rows[i].Values[1])
		assert.Equal(t, ab.Rows[i].Values[1], ba.Rows[i].Values[0])
	}
}

func TestMerge_UnknownTimeframesGoLast(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h"})
	got, err := m.Merge("EURUSD", []*models.FeatureTable{
		table("2h", []string{"a"}, t0, 2*time.Hour, 4),
		table("1h", []string{"a"}, t0, time.Hour, 8),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1h", "a_2h"}, got.ColumnNames())
	assert.Len(t, got.Rows, 4)
}

func TestMerge_RejectsDuplicateTimeframe(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h"})
	_, err := m.Merge("EURUSD", []*models.FeatureTable{
		table("1h", []string{"a"}, t0, time.Hour, 4),
		table("1h", []string{"b"}, t0, time.Hour, 4),
	})
	assert.ErrorIs(t, err, domrepo.ErrDuplicateTimeframe)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	m := NewMerger([]models.Timeframe{"1h", "4h"})
	h1 := table("1h", []string{"a"}, t0, time.Hour, 8)
	h4 := table("4h", []string{"a"}, t0, 4*time.Hour, 2)
	before := h1.Rows[4].Values[0]

	got, err := m.Merge("EURUSD", []*models.FeatureTable{h1, h4})
	require.NoError(t, err)
	got.Rows[1].Values[0] = -1
	assert.Equal(t, before, h1.Rows[4].Values[0])
	assert.Len(t, h1.Rows[4].Values, 1)
}
