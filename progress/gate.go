// Package progress owns the live marker list of the open dataset and persists
// every mastery change. The playback controller never sees it directly; it
// reads the consequences through the sequence on its next decision.
package progress

import (
	"fmt"
	"sync"

	"github.com/reprise-cli/reprise/dataset"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Saver persists a dataset.
type Saver interface {
	Save(d *dataset.Dataset) error
}

// Gate serializes edits to one dataset and writes them through.
type Gate struct {
	mu     sync.RWMutex
	data   *dataset.Dataset
	base   segment.WindowConfig
	saver  Saver
	window segment.WindowConfig
}

// New wraps d. base is the process-wide window the dataset may override.
func New(d *dataset.Dataset, base segment.WindowConfig, saver Saver) *Gate {
	return &Gate{
		data:   d,
		base:   base,
		saver:  saver,
		window: d.EffectiveWindow(base),
	}
}

// Markers returns a copy of the current markers.
func (g *Gate) Markers() []marker.Marker {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.data.Markers)
}

// Window returns the window settings in effect for this dataset.
func (g *Gate) Window() segment.WindowConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.window
}

// Dataset returns a copy of the dataset as currently held.
func (g *Gate) Dataset() dataset.Dataset {
	g.mu.RLock()
	defer g.mu.RUnlock()

	d := *g.data
	d.Markers = slices.Clone(g.data.Markers)
	return d
}

func (g *Gate) indexOf(key segment.Key) int {
	return slices.IndexFunc(g.data.Markers, func(m marker.Marker) bool {
		return segment.Key(m.T) == key
	})
}

// Level reports the level of the first marker at key.
func (g *Gate) Level(key segment.Key) mo.Option[marker.Level] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if i := g.indexOf(key); i >= 0 {
		return mo.Some(g.data.Markers[i].Level)
	}
	return mo.None[marker.Level]()
}

// ToggleLevel flips the level of the first marker at key and persists it.
func (g *Gate) ToggleLevel(key segment.Key) (marker.Level, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.indexOf(key)
	if i < 0 {
		return marker.Unknown, fmt.Errorf("no marker at %s", key)
	}

	return g.setLocked(i, g.data.Markers[i].Level.Toggle())
}

// SetLevel sets the level of the first marker at key and persists it.
func (g *Gate) SetLevel(key segment.Key, level marker.Level) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.indexOf(key)
	if i < 0 {
		return fmt.Errorf("no marker at %s", key)
	}

	if g.data.Markers[i].Level == level {
		return nil
	}

	_, err := g.setLocked(i, level)
	return err
}

func (g *Gate) setLocked(i int, level marker.Level) (marker.Level, error) {
	previous := g.data.Markers[i].Level
	g.data.Markers[i].Level = level

	if err := g.saver.Save(g.data); err != nil {
		g.data.Markers[i].Level = previous
		return previous, fmt.Errorf("save %s: %w", g.data.ID, err)
	}

	log.Debugf("marker %q at %s is now %s", g.data.Markers[i].Label, marker.FormatTime(g.data.Markers[i].T), level)
	return level, nil
}

// Replace swaps the whole marker list and persists it.
func (g *Gate) Replace(markers []marker.Marker) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	previous := g.data.Markers
	g.data.Markers = slices.Clone(markers)

	if err := g.saver.Save(g.data); err != nil {
		g.data.Markers = previous
		return fmt.Errorf("save %s: %w", g.data.ID, err)
	}

	return nil
}

// SetWindow stores a dataset-level window override and persists it.
func (g *Gate) SetWindow(w segment.WindowConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	effective := g.base.Override(w)
	if err := effective.Validate(); err != nil {
		return err
	}

	previous := g.data.Window
	g.data.Window = &w

	if err := g.saver.Save(g.data); err != nil {
		g.data.Window = previous
		return fmt.Errorf("save %s: %w", g.data.ID, err)
	}

	g.window = effective
	return nil
}
