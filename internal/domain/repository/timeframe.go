package repository

import (
	"fmt"
	"strings"

	"FeatMerge/internal/domain/models"
)

// IsValidTimeframe returns true if tf can be used both as a file name part and a column suffix.
func IsValidTimeframe(tf models.Timeframe) bool {
	s := string(tf)
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	return !strings.ContainsAny(s, `/\ ,`+"\t")
}

// ParseTimeframes converts configured labels to timeframes, keeping their order.
func ParseTimeframes(labels []string) ([]models.Timeframe, error) {
	out := make([]models.Timeframe, 0, len(labels))
	seen := make(map[models.Timeframe]struct{}, len(labels))
	for _, l := range labels {
		tf := models.Timeframe(l)
		if !IsValidTimeframe(tf) {
			return nil, fmt.Errorf("invalid timeframe %q", l)
		}
		if _, dup := seen[tf]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTimeframe, l)
		}
		seen[tf] = struct{}{}
		out = append(out, tf)
	}
	return out, nil
}
