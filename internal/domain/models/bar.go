package models

import (
	"math"
	"time"
)

// RawBar is one OHLCV row as read from a source file.
// Missing or non-numeric fields are NaN; an unparseable timestamp is the zero time.
type RawBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Malformed reports whether the bar lacks a timestamp or any numeric field.
func (b RawBar) Malformed() bool {
	if b.Time.IsZero() {
		return true
	}
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
