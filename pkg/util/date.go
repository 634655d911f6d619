package util

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var nan = math.NaN()

// ParseTime tries each layout in order (interpreted in loc), then unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).In(loc), true
	}
	return time.Time{}, false
}

// JoinDateTime joins separate date and time fields as exported by MetaTrader.
func JoinDateTime(date, clock string) string {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if clock == "" {
		return date
	}
	return date + " " + clock
}
