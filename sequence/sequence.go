// Package sequence maintains the filtered, identity-keyed view of segments that playback walks through.
package sequence

import (
	"sort"
	"sync"

	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Filter decides whether a segment is part of the sequence.
type Filter func(segment.Segment) bool

// UnknownOnly keeps segments whose marker is not yet known.
func UnknownOnly(s segment.Segment) bool {
	return s.Level == marker.Unknown
}

// All keeps every segment.
func All(segment.Segment) bool {
	return true
}

// Apply returns the segments accepted by filter, in their original order.
func Apply(segments []segment.Segment, filter Filter) []segment.Segment {
	return lo.Filter(segments, func(s segment.Segment, _ int) bool {
		return filter(s)
	})
}

// Find returns the first segment identified by key.
func Find(segments []segment.Segment, key segment.Key) mo.Option[segment.Segment] {
	found, ok := lo.Find(segments, func(s segment.Segment) bool {
		return s.Key() == key
	})
	if !ok {
		return mo.None[segment.Segment]()
	}
	return mo.Some(found)
}

// NextAfter returns the first segment starting strictly after key.
// segments must be sorted by start, which Build guarantees.
func NextAfter(segments []segment.Segment, key segment.Key) mo.Option[segment.Segment] {
	i := sort.Search(len(segments), func(i int) bool {
		return segments[i].Start > float64(key)
	})
	if i == len(segments) {
		return mo.None[segment.Segment]()
	}
	return mo.Some(segments[i])
}

// Source supplies the live marker list and window configuration.
type Source interface {
	Markers() []marker.Marker
	Window() segment.WindowConfig
}

// Snapshot is a point-in-time copy of the sequence for display.
type Snapshot struct {
	Segments []segment.Segment
	Active   mo.Option[segment.Key]
}

// State is the filtered view over a live Source plus the active position.
//
// Segments are rebuilt from the source on every query, so a level change made
// through the source is visible to the very next lookup.
type State struct {
	mu     sync.RWMutex
	source Source
	filter Filter
	active mo.Option[segment.Key]
}

// New creates a State over source. A nil filter keeps every segment.
func New(source Source, filter Filter) *State {
	if filter == nil {
		filter = All
	}
	return &State{
		source: source,
		filter: filter,
		active: mo.None[segment.Key](),
	}
}

// SetFilter replaces the filter predicate.
func (s *State) SetFilter(filter Filter) {
	if filter == nil {
		filter = All
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

// Segments returns the current filtered segments.
func (s *State) Segments() []segment.Segment {
	s.mu.RLock()
	filter := s.filter
	s.mu.RUnlock()

	return Apply(segment.Build(s.source.Markers(), s.source.Window()), filter)
}

// All returns every segment regardless of the filter.
func (s *State) All() []segment.Segment {
	return segment.Build(s.source.Markers(), s.source.Window())
}

// Lookup resolves key against the current filtered segments.
func (s *State) Lookup(key segment.Key) mo.Option[segment.Segment] {
	return Find(s.Segments(), key)
}

// NextAfter returns the first filtered segment starting after key. key need
// not be part of the filtered list itself.
func (s *State) NextAfter(key segment.Key) mo.Option[segment.Segment] {
	return NextAfter(s.Segments(), key)
}

// First returns the earliest filtered segment.
func (s *State) First() mo.Option[segment.Segment] {
	segments := s.Segments()
	if len(segments) == 0 {
		return mo.None[segment.Segment]()
	}
	return mo.Some(segments[0])
}

// Activate records the segment currently being played, or none.
func (s *State) Activate(key mo.Option[segment.Key]) {
	s.mu.Lock()
	s.active = key
	s.mu.Unlock()
}

// Active returns the key of the segment currently being played.
func (s *State) Active() mo.Option[segment.Key] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Snapshot returns the filtered segments together with the active key.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Segments: s.Segments(),
		Active:   s.Active(),
	}
}
