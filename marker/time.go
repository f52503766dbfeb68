package marker

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTime accepts plain seconds ("12.5") or clock notation ("1:05", "1:02:03.25").
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	if len(parts) == 1 {
		return seconds, nil
	}

	if seconds >= 60 {
		return 0, fmt.Errorf("invalid time %q: seconds out of range", s)
	}

	var total float64
	for i, part := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		// minutes must stay below 60 when hours are present
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid time %q: minutes out of range", s)
		}
		total = total*60 + float64(n)
	}

	return total*60 + seconds, nil
}

// FormatTime renders seconds as m:ss.cc, or h:mm:ss.cc past the hour.
func FormatTime(t float64) string {
	if t < 0 || math.IsNaN(t) {
		t = 0
	}

	cs := int64(math.Round(t * 100))
	h := cs / 360000
	m := cs / 6000 % 60
	sec := cs / 100 % 60
	frac := cs % 100

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, sec, frac)
	}
	return fmt.Sprintf("%d:%02d.%02d", m, sec, frac)
}
