package segment

import (
	"errors"
	"fmt"
	"time"
)

// WindowConfig sizes the segments projected from markers and paces the poll loop.
type WindowConfig struct {
	WindowSec      float64 `json:"window_sec"`
	MinSegmentSec  float64 `json:"min_segment_sec"`
	GapEpsilon     float64 `json:"gap_epsilon"`
	EndTolerance   float64 `json:"end_tolerance"`
	PollIntervalMs int     `json:"poll_interval_ms"`
}

// DefaultWindow returns the process-wide defaults.
func DefaultWindow() WindowConfig {
	return WindowConfig{
		WindowSec:      1.8,
		MinSegmentSec:  0.3,
		GapEpsilon:     0.05,
		EndTolerance:   0.01,
		PollIntervalMs: 120,
	}
}

// WithDefaults fills zero-valued fields from DefaultWindow.
func (w WindowConfig) WithDefaults() WindowConfig {
	d := DefaultWindow()
	if w.WindowSec == 0 {
		w.WindowSec = d.WindowSec
	}
	if w.MinSegmentSec == 0 {
		w.MinSegmentSec = d.MinSegmentSec
	}
	if w.GapEpsilon == 0 {
		w.GapEpsilon = d.GapEpsilon
	}
	if w.EndTolerance == 0 {
		w.EndTolerance = d.EndTolerance
	}
	if w.PollIntervalMs == 0 {
		w.PollIntervalMs = d.PollIntervalMs
	}
	return w
}

// Validate reports the first field outside its allowed range.
func (w WindowConfig) Validate() error {
	switch {
	case !(w.WindowSec > 0):
		return fmt.Errorf("window length must be positive, got %v", w.WindowSec)
	case w.MinSegmentSec < 0:
		return errors.New("minimum segment length must not be negative")
	case w.GapEpsilon < 0:
		return errors.New("gap epsilon must not be negative")
	case w.EndTolerance < 0:
		return errors.New("end tolerance must not be negative")
	case w.PollIntervalMs <= 0:
		return fmt.Errorf("poll interval must be positive, got %dms", w.PollIntervalMs)
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (w WindowConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// Override returns w with every non-zero field of o applied on top.
func (w WindowConfig) Override(o WindowConfig) WindowConfig {
	if o.WindowSec != 0 {
		w.WindowSec = o.WindowSec
	}
	if o.MinSegmentSec != 0 {
		w.MinSegmentSec = o.MinSegmentSec
	}
	if o.GapEpsilon != 0 {
		w.GapEpsilon = o.GapEpsilon
	}
	if o.EndTolerance != 0 {
		w.EndTolerance = o.EndTolerance
	}
	if o.PollIntervalMs != 0 {
		w.PollIntervalMs = o.PollIntervalMs
	}
	return w
}
