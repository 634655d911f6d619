package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"FeatMerge/internal/domain/models"
)

// fileMode is applied to every output file; CreateTemp would leave it 0600.
const fileMode = 0o644

// CSVTableSink writes one comma-separated file per symbol: Dir/<symbol><Suffix>.
type CSVTableSink struct {
	dir             string
	suffix          string
	timestampColumn string
	timestampLayout string
}

// NewCSVTableSink creates a file sink. The directory is created on first write.
func NewCSVTableSink(dir, suffix, timestampColumn, timestampLayout string) *CSVTableSink {
	return &CSVTableSink{
		dir:             dir,
		suffix:          suffix,
		timestampColumn: timestampColumn,
		timestampLayout: timestampLayout,
	}
}

// Path returns the output file of a symbol.
func (s *CSVTableSink) Path(symbol string) string {
	return filepath.Join(s.dir, symbol+s.suffix)
}

// Persist writes the table to a temp file and renames it over the target, so a
// reader never sees a partial file.
func (s *CSVTableSink) Persist(ctx context.Context, t *models.MergedTable) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := s.Path(t.Symbol)

	tmp, err := os.CreateTemp(s.dir, "."+t.Symbol+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := s.write(ctx, tmp, t); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("rename to %s: %w", target, err)
	}
	return target, nil
}

func (s *CSVTableSink) write(ctx context.Context, f *os.File, t *models.MergedTable) error {
	w := csv.NewWriter(f)

	header := append([]string{s.timestampColumn}, t.ColumnNames()...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(header))
	for i, row := range t.Rows {
		if i%8192 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec[0] = row.Time.Format(s.timestampLayout)
		for j, v := range row.Values {
			rec[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Close is a no-op; files are closed after every Persist.
func (s *CSVTableSink) Close() error { return nil }
