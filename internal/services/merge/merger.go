// Package merge aligns per-timeframe feature tables of one symbol into a single table.
package merge

import (
	"fmt"
	"sort"
	"time"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
)

// Merger folds feature tables with an inner join on the timestamp key.
// Tables are folded in the configured timeframe order, which fixes column order.
type Merger struct {
	rank map[models.Timeframe]int
}

// NewMerger creates a merger that orders inputs by the given timeframe list.
func NewMerger(order []models.Timeframe) *Merger {
	rank := make(map[models.Timeframe]int, len(order))
	for i, tf := range order {
		if _, ok := rank[tf]; !ok {
			rank[tf] = i
		}
	}
	return &Merger{rank: rank}
}

// Merge joins the tables of one symbol.
//
// No tables yields an empty table. Otherwise the result holds every column of every
// table keyed by (timeframe, feature), and one row per timestamp present in all tables,
// in ascending time order. Disjoint inputs yield zero rows with the full column set.
func (m *Merger) Merge(symbol string, tables []*models.FeatureTable) (*models.MergedTable, error) {
	out := &models.MergedTable{Symbol: symbol}
	ordered, err := m.order(tables)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return out, nil
	}

	for _, t := range ordered {
		for _, name := range t.Names {
			out.Columns = append(out.Columns, models.ColumnKey{Timeframe: t.Timeframe, Feature: name})
		}
	}

	// The fold keeps, for each surviving timestamp, the row index into every table folded so far.
	type pending struct {
		at   time.Time
		rows []int
	}
	acc := make([]pending, 0, len(ordered[0].Rows))
	for i, r := range ordered[0].Rows {
		acc = append(acc, pending{at: r.Time, rows: []int{i}})
	}
	for _, t := range ordered[1:] {
		idx := keyIndex(t)
		next := acc[:0]
		for _, p := range acc {
			if j, ok := idx[p.at.UnixNano()]; ok {
				p.rows = append(p.rows, j)
				next = append(next, p)
			}
		}
		acc = next
		if len(acc) == 0 {
			break
		}
	}

	out.Rows = make([]models.MergedRow, 0, len(acc))
	for _, p := range acc {
		values := make([]float64, 0, len(out.Columns))
		for ti, t := range ordered {
			values = append(values, t.Rows[p.rows[ti]].Values...)
		}
		out.Rows = append(out.Rows, models.MergedRow{Time: p.at, Values: values})
	}
	return out, nil
}

// order sorts tables by configured rank; unknown timeframes keep their relative input order after known ones.
func (m *Merger) order(tables []*models.FeatureTable) ([]*models.FeatureTable, error) {
	seen := make(map[models.Timeframe]struct{}, len(tables))
	out := make([]*models.FeatureTable, 0, len(tables))
	for _, t := range tables {
		if t == nil {
			continue
		}
		if _, dup := seen[t.Timeframe]; dup {
			return nil, fmt.Errorf("%w: %s", domrepo.ErrDuplicateTimeframe, t.Timeframe)
		}
		seen[t.Timeframe] = struct{}{}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return m.rankOf(out[i].Timeframe) < m.rankOf(out[j].Timeframe)
	})
	return out, nil
}

func (m *Merger) rankOf(tf models.Timeframe) int {
	if r, ok := m.rank[tf]; ok {
		return r
	}
	return len(m.rank)
}

func keyIndex(t *models.FeatureTable) map[int64]int {
	idx := make(map[int64]int, len(t.Rows))
	for i, r := range t.Rows {
		idx[r.Time.UnixNano()] = i
	}
	return idx
}
