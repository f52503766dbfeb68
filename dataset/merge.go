package dataset

import (
	"github.com/reprise-cli/reprise/marker"
	"github.com/samber/lo"
)

// CarryLevels returns incoming with mastery copied over from previous: a
// marker that is Unknown in incoming becomes Known when previous holds a
// Known marker with the same time and label.
func CarryLevels(previous, incoming []marker.Marker) []marker.Marker {
	type identity struct {
		t     float64
		label string
	}

	known := lo.SliceToMap(
		lo.Filter(previous, func(m marker.Marker, _ int) bool { return m.Level == marker.Known }),
		func(m marker.Marker) (identity, struct{}) { return identity{m.T, m.Label}, struct{}{} },
	)

	return lo.Map(incoming, func(m marker.Marker, _ int) marker.Marker {
		if _, ok := known[identity{m.T, m.Label}]; ok {
			m.Level = marker.Known
		}
		return m
	})
}
