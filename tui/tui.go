// Package tui is the interactive drill session: a list of the filtered
// segments, the controller status and the key bindings that drive them.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/sequence"
	"github.com/samber/mo"
)

// Controller is the part of playback.Controller the session drives.
type Controller interface {
	Play(key segment.Key)
	Stop()
	Status() playback.Status
	SetRate(rate float64)
	SetAutoAdvance(enabled bool)
}

// Sequence is the part of sequence.State the session reads.
type Sequence interface {
	Segments() []segment.Segment
	SetFilter(filter sequence.Filter)
	Lookup(key segment.Key) mo.Option[segment.Segment]
}

// Gate records mastery changes.
type Gate interface {
	ToggleLevel(key segment.Key) (marker.Level, error)
}

// Options wire a session to its collaborators.
type Options struct {
	Title      string
	Controller Controller
	Sequence   Sequence
	Gate       Gate

	// Launch starts the player. It runs once, off the UI goroutine.
	Launch func() error

	// Statuses delivers every controller transition.
	Statuses <-chan playback.Status
	// PlayerDone returns a channel closed when the launched player goes away.
	// It is asked for after Launch succeeds.
	PlayerDone func() <-chan struct{}
	// Notices carries messages from background work such as file reloads.
	Notices <-chan string

	UnknownOnly bool
	AutoAdvance bool
	Rate        float64
	// Start is played as soon as the player is up.
	Start mo.Option[segment.Key]
}

// Result describes how the session ended.
type Result struct {
	// Last is the segment that was playing or under the cursor on exit.
	Last mo.Option[segment.Segment]
}

// Run blocks until the user quits.
func Run(options *Options) (*Result, error) {
	bubble := newBubble(options)

	model, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}

	return model.(*statefulBubble).result(), nil
}
