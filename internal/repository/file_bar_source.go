package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
	applogger "FeatMerge/pkg/logger"
	"FeatMerge/pkg/util"
)

// BarColumns names the header fields of a raw export. Time is optional; when set
// and present in the header it is joined to Date before parsing.
type BarColumns struct {
	Date   string
	Time   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// FileSourceOptions configures FileBarSource.
type FileSourceOptions struct {
	Dir       string
	Pattern   string
	Delimiter rune
	Columns   BarColumns
	Layouts   []string
	Location  *time.Location
}

// FileBarSource reads delimited OHLCV exports laid out as Dir/Pattern.
type FileBarSource struct {
	opts FileSourceOptions
	l    *applogger.Logger
}

// NewFileBarSource creates a file based BarSource.
func NewFileBarSource(opts FileSourceOptions) *FileBarSource {
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &FileBarSource{opts: opts, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *FileBarSource) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// Path resolves the file of one (symbol, timeframe).
func (s *FileBarSource) Path(symbol string, tf models.Timeframe) string {
	name := strings.NewReplacer("{symbol}", symbol, "{timeframe}", string(tf)).Replace(s.opts.Pattern)
	return filepath.Join(s.opts.Dir, name)
}

// LoadBars reads every data row. Rows whose fields cannot be parsed are returned
// with NaN fields or a zero time so the caller can count and drop them.
func (s *FileBarSource) LoadBars(ctx context.Context, symbol string, tf models.Timeframe) ([]models.RawBar, error) {
	path := s.Path(symbol, tf)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domrepo.ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	r := csv.NewReader(decoded(f))
	r.Comma = s.opts.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", domrepo.ErrSourceUnavailable, path)
		}
		return nil, fmt.Errorf("%w: %s: read header: %w", domrepo.ErrSourceUnavailable, path, err)
	}
	idx, err := s.indexHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domrepo.ErrSourceUnavailable, path, err)
	}

	bars := make([]models.RawBar, 0, 4096)
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				s.l.Debug("unparseable row",
					applogger.String("path", path),
					applogger.Int("line", line),
					applogger.Error(err),
				)
				bars = append(bars, malformedBar())
				continue
			}
			return nil, fmt.Errorf("%w: %s: %w", domrepo.ErrSourceUnavailable, path, err)
		}
		if blank(rec) {
			continue
		}
		bars = append(bars, s.parse(rec, idx))
	}
	return bars, nil
}

type columnIndex struct {
	date, clock, open, high, low, close, volume int
}

func (s *FileBarSource) indexHeader(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		pos[strings.ToLower(h)] = i
	}
	find := func(name string) (int, error) {
		if i, ok := pos[strings.ToLower(name)]; ok {
			return i, nil
		}
		return -1, fmt.Errorf("missing column %q", name)
	}

	c := s.opts.Columns
	idx := columnIndex{clock: -1}
	var err error
	if idx.date, err = find(c.Date); err != nil {
		return idx, err
	}
	// Daily exports carry no time column; the date is parsed alone.
	if c.Time != "" {
		if i, ferr := find(c.Time); ferr == nil {
			idx.clock = i
		}
	}
	if idx.open, err = find(c.Open); err != nil {
		return idx, err
	}
	if idx.high, err = find(c.High); err != nil {
		return idx, err
	}
	if idx.low, err = find(c.Low); err != nil {
		return idx, err
	}
	if idx.close, err = find(c.Close); err != nil {
		return idx, err
	}
	if idx.volume, err = find(c.Volume); err != nil {
		return idx, err
	}
	return idx, nil
}

func (s *FileBarSource) parse(rec []string, idx columnIndex) models.RawBar {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	stamp := field(idx.date)
	if idx.clock >= 0 {
		stamp = util.JoinDateTime(stamp, field(idx.clock))
	}
	ts, _ := util.ParseTime(stamp, s.opts.Layouts, s.opts.Location)

	return models.RawBar{
		Time:   ts,
		Open:   util.ParseFloat(field(idx.open)),
		High:   util.ParseFloat(field(idx.high)),
		Low:    util.ParseFloat(field(idx.low)),
		Close:  util.ParseFloat(field(idx.close)),
		Volume: util.ParseFloat(field(idx.volume)),
	}
}

// decoded converts UTF-16 exports (MetaTrader writes them with a BOM) to UTF-8
// and strips a UTF-8 BOM.
func decoded(r io.Reader) io.Reader {
	return transform.NewReader(bufio.NewReader(r), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// malformedBar stands in for a row the reader could not split; its zero time marks it malformed.
func malformedBar() models.RawBar {
	return models.RawBar{}
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
