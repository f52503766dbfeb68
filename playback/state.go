package playback

import (
	"fmt"

	"github.com/reprise-cli/reprise/segment"
	"github.com/samber/mo"
)

// State is the externally observable state of the controller.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is what the UI observes after every transition.
type Status struct {
	State      State
	Key        mo.Option[segment.Key]
	Repeat     int
	Loops      int
	Generation uint64
	Rate       float64
	Advance    bool
}

func (s Status) String() string {
	key, ok := s.Key.Get()
	if !ok {
		return s.State.String()
	}
	return fmt.Sprintf("%s %s %d/%d", s.State, key, s.Repeat+1, s.Loops)
}
