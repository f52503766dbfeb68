// Package marker defines the durable unit of learner data: a timestamp, a label and a mastery flag.
package marker

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Level is the mastery flag of a marker.
type Level int

const (
	Unknown Level = iota
	Known
)

// Toggle returns the opposite level.
func (l Level) Toggle() Level {
	if l == Known {
		return Unknown
	}
	return Known
}

func (l Level) String() string {
	if l == Known {
		return "known"
	}
	return "unknown"
}

// MarshalText encodes the level as "known" or "unknown".
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts "known"/"unknown" and the legacy numeric forms "1"/"0".
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel parses a level name. The empty string is Unknown.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown", "0", "false":
		return Unknown, nil
	case "known", "1", "true":
		return Known, nil
	default:
		return Unknown, fmt.Errorf("invalid level %q", s)
	}
}

// Marker is a timestamp in seconds with an optional label and a mastery level.
type Marker struct {
	T     float64 `json:"t"`
	Label string  `json:"label"`
	Level Level   `json:"level"`
}

func (m Marker) String() string {
	return fmt.Sprintf("%.2fs %q (%s)", m.T, m.Label, m.Level)
}

// Sorted returns a copy of markers stably sorted by T. Markers sharing a
// timestamp keep their relative order.
func Sorted(markers []Marker) []Marker {
	sorted := slices.Clone(markers)
	slices.SortStableFunc(sorted, func(a, b Marker) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// IndexAt returns the index of the first marker at exactly t, or -1.
func IndexAt(markers []Marker, t float64) int {
	return slices.IndexFunc(markers, func(m Marker) bool {
		return m.T == t
	})
}
