package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimecode renders seconds as HH:MM:SS for downstream consumers
// (YouTube chapter lines, the clip cutter, editor reports).
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseTimecode accepts "HH:MM:SS", "MM:SS" or a bare seconds value and
// returns raw seconds. Model output uses all three forms interchangeably.
func ParseTimecode(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timecode")
	}

	if !strings.Contains(value, ":") {
		secs, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
		return secs, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode %q", value)
	}

	var total float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", value, err)
		}
		total = total*60 + n
	}
	return total, nil
}
