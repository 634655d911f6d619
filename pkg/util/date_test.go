package util

import (
	"math"
	"strconv"
	"testing"
	"time"
)

var layouts = []string{"2006.01.02 15:04:05", "2006.01.02", time.RFC3339}

func TestParseTimeMetaTrader(t *testing.T) {
	got, ok := ParseTime(JoinDateTime("2024.10.10", "10:10:10"), layouts, time.UTC)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s, layouts, time.UTC)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10), layouts, nil)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeInvalid(t *testing.T) {
	for _, s := range []string{"", "  ", "yesterday", "-5"} {
		if _, ok := ParseTime(s, layouts, time.UTC); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" EURUSD, ,GBPUSD ,")
	if len(got) != 2 || got[0] != "EURUSD" || got[1] != "GBPUSD" {
		t.Fatalf("unexpected split %v", got)
	}
}

func TestParseFloat(t *testing.T) {
	if v := ParseFloat(" 1.2345 "); v != 1.2345 {
		t.Fatalf("unexpected value %v", v)
	}
	if v := ParseFloat(`"7"`); v != 7 {
		t.Fatalf("unexpected quoted value %v", v)
	}
	for _, s := range []string{"", "n/a", "-"} {
		if !math.IsNaN(ParseFloat(s)) {
			t.Fatalf("expected NaN for %q", s)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("4", 1) != 4 || ParseIntDefault("x", 1) != 1 || ParseIntDefault("", 2) != 2 {
		t.Fatalf("unexpected ParseIntDefault results")
	}
}
