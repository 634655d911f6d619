// Package indicators computes windowed technical indicators over whole series.
//
// Every function is pure: it returns a new slice of the same length as its input,
// aligned by position, with NaN marking entries that cannot be computed yet. Only
// values at or before an index contribute to that index.
package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average over the trailing window.
func SMA(in []float64, window int) []float64 {
	out := Undefined(len(in))
	if !fits(len(in), window) {
		return out
	}
	copy(out[window-1:], talib.Sma(in, window)[window-1:])
	return out
}

// RollingMean is SMA applied to a non-price series such as volume.
func RollingMean(in []float64, window int) []float64 {
	return SMA(in, window)
}

// RollingStd returns the population standard deviation over the trailing window.
func RollingStd(in []float64, window int) []float64 {
	out := Undefined(len(in))
	if !fits(len(in), window) {
		return out
	}
	if window == 1 {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	copy(out[window-1:], talib.StdDev(in, window, 1.0)[window-1:])
	return out
}

// EMA returns the exponential moving average with alpha = 2/(window+1).
// The recursion is seeded with the first value and the first window-1 entries are undefined.
func EMA(in []float64, window int) []float64 {
	out := Undefined(len(in))
	if !fits(len(in), window) {
		return out
	}
	alpha := 2.0 / float64(window+1)
	prev := in[0]
	for i, v := range in {
		if i > 0 {
			prev = alpha*v + (1-alpha)*prev
		}
		if i >= window-1 {
			out[i] = prev
		}
	}
	return out
}

// Bands holds Bollinger band series.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Width returns Upper - Lower.
func (b Bands) Width() []float64 {
	return Sub(b.Upper, b.Lower)
}

// Bollinger returns middle = SMA(window) and upper/lower = middle ± k·RollingStd(window).
func Bollinger(in []float64, window int, k float64) Bands {
	b := Bands{Upper: Undefined(len(in)), Middle: Undefined(len(in)), Lower: Undefined(len(in))}
	if !fits(len(in), window) {
		return b
	}
	if window == 1 {
		copy(b.Upper, in)
		copy(b.Middle, in)
		copy(b.Lower, in)
		return b
	}
	upper, middle, lower := talib.BBands(in, window, k, k, talib.SMA)
	copy(b.Upper[window-1:], upper[window-1:])
	copy(b.Middle[window-1:], middle[window-1:])
	copy(b.Lower[window-1:], lower[window-1:])
	return b
}

// PctChange returns the percent change between consecutive values (x[i]/x[i-1] - 1) * 100.
func PctChange(in []float64) []float64 {
	out := Undefined(len(in))
	for i := 1; i < len(in); i++ {
		out[i] = (in[i]/in[i-1] - 1) * 100
	}
	return out
}

// AbsDiff returns |a - b| element-wise.
func AbsDiff(a, b []float64) []float64 {
	out := Sub(a, b)
	for i, v := range out {
		out[i] = math.Abs(v)
	}
	return out
}

// Sub returns a - b element-wise. Both inputs must have the same length.
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Undefined returns a series of n NaN values.
func Undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// IsUndefined reports whether v cannot be used as a feature value.
// Infinite values appear for percent changes over a zero close.
func IsUndefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func fits(n, window int) bool {
	return window >= 1 && window <= n
}
