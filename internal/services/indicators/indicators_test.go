package indicators

import (
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.10f, want %.10f (tol=%g)", label, got, want, tol)
	}
}

func countUndefined(s []float64) int {
	n := 0
	for _, v := range s {
		if IsUndefined(v) {
			n++
		}
	}
	return n
}

func series(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i%7)*0.25
	}
	return out
}

func TestSMA_HandCalculated(t *testing.T) {
	// (100+102+104)/3 = 102, (102+104+103)/3 = 103, (104+103+105)/3 = 104
	got := SMA([]float64{100, 102, 104, 103, 105}, 3)
	if countUndefined(got[:2]) != 2 {
		t.Fatalf("expected 2 warm-up entries, got %v", got[:2])
	}
	for i, want := range []float64{102, 103, 104} {
		assertClose(t, "SMA(3)", got[i+2], want, 1e-9)
	}
}

func TestSMA_WarmUpAndWindowMean(t *testing.T) {
	in := series(60)
	for _, w := range []int{1, 2, 5, 20, 60} {
		got := SMA(in, w)
		if len(got) != len(in) {
			t.Fatalf("w=%d: length %d, want %d", w, len(got), len(in))
		}
		if n := countUndefined(got); n != w-1 {
			t.Fatalf("w=%d: %d undefined entries, want %d", w, n, w-1)
		}
		for i := w - 1; i < len(in); i++ {
			sum := 0.0
			for _, v := range in[i-w+1 : i+1] {
				sum += v
			}
			assertClose(t, "SMA window mean", got[i], sum/float64(w), 1e-9)
		}
	}
}

func TestWindowLongerThanSeries(t *testing.T) {
	in := series(10)
	for name, s := range map[string][]float64{
		"sma":   SMA(in, 11),
		"ema":   EMA(in, 11),
		"std":   RollingStd(in, 11),
		"upper": Bollinger(in, 11, 2).Upper,
	} {
		if countUndefined(s) != len(in) {
			t.Fatalf("%s: expected all undefined, got %v", name, s)
		}
	}
	if countUndefined(SMA(nil, 3)) != 0 || len(SMA(nil, 3)) != 0 {
		t.Fatalf("empty input must give empty output")
	}
}

func TestEMA_Recursion(t *testing.T) {
	in := []float64{10, 11, 12, 13, 14}
	got := EMA(in, 3)
	alpha := 0.5
	e := 10.0
	want := []float64{e}
	for _, v := range in[1:] {
		e = alpha*v + (1-alpha)*e
		want = append(want, e)
	}
	if countUndefined(got) != 2 {
		t.Fatalf("expected 2 warm-up entries, got %v", got)
	}
	for i := 2; i < len(in); i++ {
		assertClose(t, "EMA(3)", got[i], want[i], 1e-12)
	}
}

func TestEMA_NoLookAhead(t *testing.T) {
	in := series(40)
	full := EMA(in, 10)
	prefix := EMA(in[:25], 10)
	for i := 9; i < 25; i++ {
		assertClose(t, "EMA prefix", prefix[i], full[i], 1e-12)
	}
}

func TestBollinger_WidthIsFourStd(t *testing.T) {
	in := series(80)
	b := Bollinger(in, 20, 2)
	std := make([]float64, len(in))
	for i := 19; i < len(in); i++ {
		win := in[i-19 : i+1]
		mean := 0.0
		for _, v := range win {
			mean += v
		}
		mean /= 20
		ss := 0.0
		for _, v := range win {
			ss += (v - mean) * (v - mean)
		}
		std[i] = math.Sqrt(ss / 20)
	}
	width := b.Width()
	if countUndefined(width) != 19 {
		t.Fatalf("expected 19 undefined width entries, got %d", countUndefined(width))
	}
	for i := 19; i < len(in); i++ {
		assertClose(t, "bb width", width[i], 4*std[i], 1e-6)
		if b.Upper[i] < b.Lower[i] {
			t.Fatalf("upper < lower at %d: %f < %f", i, b.Upper[i], b.Lower[i])
		}
		assertClose(t, "bb middle", b.Middle[i], (b.Upper[i]+b.Lower[i])/2, 1e-9)
	}
}

func TestBollinger_FlatSeries(t *testing.T) {
	in := []float64{5, 5, 5, 5, 5}
	b := Bollinger(in, 3, 2)
	for i := 2; i < len(in); i++ {
		assertClose(t, "flat upper", b.Upper[i], 5, 1e-12)
		assertClose(t, "flat lower", b.Lower[i], 5, 1e-12)
	}
}

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{100, 110, 99, 0, 5})
	if !math.IsNaN(got[0]) {
		t.Fatalf("first pct change must be undefined, got %v", got[0])
	}
	assertClose(t, "pct 1", got[1], 10, 1e-9)
	assertClose(t, "pct 2", got[2], -10, 1e-9)
	assertClose(t, "pct 3", got[3], -100, 1e-9)
	if !IsUndefined(got[4]) {
		t.Fatalf("change over a zero close must be undefined, got %v", got[4])
	}
}

func TestCandleColumns(t *testing.T) {
	open := []float64{1.10, 1.20, 1.15}
	closes := []float64{1.15, 1.10, 1.15}
	high := []float64{1.20, 1.25, 1.18}
	low := []float64{1.05, 1.08, 1.12}

	body := AbsDiff(closes, open)
	rng := Sub(high, low)
	for i, want := range []float64{0.05, 0.10, 0} {
		assertClose(t, "body", body[i], want, 1e-12)
	}
	for i, want := range []float64{0.15, 0.17, 0.06} {
		assertClose(t, "range", rng[i], want, 1e-12)
	}
}
