// Package segment projects an ordered list of markers into non-overlapping playable windows.
package segment

import (
	"fmt"
	"math"

	"github.com/reprise-cli/reprise/marker"
)

// Key identifies a segment by the timestamp of the marker it was built from.
// Keys survive filtering, unlike positions in a filtered list.
type Key float64

func (k Key) String() string {
	return fmt.Sprintf("%.3fs", float64(k))
}

// Segment is a derived playable window attached to one marker. Never persisted.
type Segment struct {
	Start float64
	End   float64
	Label string
	Level marker.Level
}

// Key returns the stable identity of s.
func (s Segment) Key() Key {
	return Key(s.Start)
}

// Duration is End - Start; zero-length segments are legal.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Build projects markers into one segment per marker, in time order.
//
// Every segment starts at its marker. All but the last end GapEpsilon before the
// next marker, clamped so that End >= Start. The last one lasts
// max(MinSegmentSec, WindowSec). The input slice is left untouched and the
// result depends only on its arguments.
func Build(markers []marker.Marker, cfg WindowConfig) []Segment {
	if len(markers) == 0 {
		return []Segment{}
	}

	sorted := marker.Sorted(markers)
	segments := make([]Segment, len(sorted))
	last := len(sorted) - 1

	for i, m := range sorted {
		end := m.T + math.Max(cfg.MinSegmentSec, cfg.WindowSec)
		if i < last {
			end = math.Max(m.T, sorted[i+1].T-cfg.GapEpsilon)
		}

		segments[i] = Segment{
			Start: m.T,
			End:   end,
			Label: m.Label,
			Level: m.Level,
		}
	}

	return segments
}
