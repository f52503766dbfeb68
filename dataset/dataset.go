// Package dataset persists marker lists keyed to a video and converts them
// to and from the line-based text format used for import and export.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
)

// Version is the current on-disk schema version.
const Version = 1

// Dataset is a titled list of markers attached to one media source.
type Dataset struct {
	ID      string `json:"id" jsonschema:"description=Stable identifier, also the file name"`
	Title   string `json:"title"`
	Source  string `json:"source" jsonschema:"description=URL or path handed to the player"`
	VideoID string `json:"video_id,omitempty"`

	Markers []marker.Marker `json:"markers"`

	// Window overrides the process-wide window settings field by field.
	Window *segment.WindowConfig `json:"window,omitempty"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta is the index entry kept for every stored dataset.
type Meta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	VideoID   string    `json:"video_id,omitempty"`
	Markers   int       `json:"markers"`
	Known     int       `json:"known"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Meta) String() string {
	return fmt.Sprintf("%s (%d/%d known)", m.Title, m.Known, m.Markers)
}

// Meta summarizes the dataset for the index.
func (d *Dataset) Meta() *Meta {
	return &Meta{
		ID:        d.ID,
		Title:     d.Title,
		VideoID:   d.VideoID,
		Markers:   len(d.Markers),
		Known:     d.Known(),
		UpdatedAt: d.UpdatedAt,
	}
}

// Known counts markers at the Known level.
func (d *Dataset) Known() int {
	return lo.CountBy(d.Markers, func(m marker.Marker) bool {
		return m.Level == marker.Known
	})
}

// EffectiveWindow applies the dataset's own window settings on top of base.
func (d *Dataset) EffectiveWindow(base segment.WindowConfig) segment.WindowConfig {
	if d.Window == nil {
		return base
	}
	return base.Override(*d.Window)
}

// Validate checks the invariants a stored dataset must hold.
func (d *Dataset) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dataset %q has no id", d.Title)
	}

	for i, m := range d.Markers {
		if m.T < 0 {
			return fmt.Errorf("marker %d (%q) has negative time %v", i+1, m.Label, m.T)
		}
	}

	if d.Window != nil {
		// only explicitly set fields need to be in range
		if err := segment.DefaultWindow().Override(*d.Window).Validate(); err != nil {
			return fmt.Errorf("dataset %s: %w", d.ID, err)
		}
	}

	return nil
}

// NewID derives a file-safe identifier from the title, falling back to the video id.
func NewID(title, videoID string) string {
	id := strings.ToLower(util.SanitizeFilename(title))
	if id == "" {
		id = util.SanitizeFilename(videoID)
	}
	if id == "" {
		id = "dataset"
	}
	return id
}
