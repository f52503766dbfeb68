// Package playback runs the repeat/advance state machine on top of an
// asynchronous, non-frame-accurate player.
//
// The player gives no end-of-segment signal, so completion is inferred by
// polling its position. Every session carries a generation number; a poll
// that wakes up for an older generation does nothing.
package playback

import (
	"math"
	"sync"
	"time"

	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/player"
	"github.com/reprise-cli/reprise/segment"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
)

// Host lends out the player handle. The handle may disappear at any time.
type Host interface {
	Player() mo.Option[player.Player]
}

// Sequence is the live, filtered segment list. It is consulted again at every
// decision, never cached across ticks.
type Sequence interface {
	Lookup(key segment.Key) mo.Option[segment.Segment]
	NextAfter(key segment.Key) mo.Option[segment.Segment]
	Activate(key mo.Option[segment.Key])
}

// Options configure a Controller. Zero values fall back to the defaults
// documented on each field.
type Options struct {
	// Loops is how many times a segment plays before advancing. Default 1.
	Loops int
	// AutoAdvance moves on to the next segment once the loop budget is spent.
	AutoAdvance bool
	// PollInterval between position reads. Default 120ms.
	PollInterval time.Duration
	// EndTolerance counts a segment as finished this many seconds early.
	EndTolerance float64
	// MaxFailures consecutive failed polls move the session to StateError. Default 25.
	MaxFailures int
	// Rate is applied to the player on every Play. Zero leaves it alone.
	Rate float64
	// SeekAhead is passed to Player.Seek as allowAhead.
	SeekAhead bool
	// Clock defaults to SystemClock.
	Clock Clock
	// OnChange receives every status transition, outside the controller lock.
	OnChange func(Status)
}

func (o Options) withDefaults() Options {
	if o.Loops < 1 {
		o.Loops = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = segment.DefaultWindow().PollInterval()
	}
	if o.MaxFailures < 1 {
		o.MaxFailures = 25
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	return o
}

type session struct {
	segment  segment.Segment
	repeat   int
	failures int
	timer    Timer
}

// Controller owns the player handle and the single poll timer.
type Controller struct {
	host Host
	seq  Sequence
	opts Options

	mu         sync.Mutex
	state      State
	generation uint64
	session    mo.Option[*session]
}

// New creates an idle controller.
func New(host Host, seq Sequence, opts Options) *Controller {
	return &Controller{
		host:    host,
		seq:     seq,
		opts:    opts.withDefaults(),
		state:   StateIdle,
		session: mo.None[*session](),
	}
}

// Play starts looping the segment identified by key. Keys that are not part
// of the current sequence are ignored. Play returns immediately.
func (c *Controller) Play(key segment.Key) {
	c.mu.Lock()
	changed := c.playLocked(key)
	status := c.statusLocked()
	c.mu.Unlock()

	if changed {
		c.notify(status)
	}
}

// Stop ends the session from any state. Safe to call repeatedly.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.haltLocked(StateIdle)
	status := c.statusLocked()
	c.mu.Unlock()

	c.notify(status)
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// SetRate changes the playback speed, applying it at once when a player is present.
func (c *Controller) SetRate(rate float64) {
	c.mu.Lock()
	c.opts.Rate = rate
	if p, ok := c.host.Player().Get(); ok && rate > 0 {
		p.SetRate(rate)
	}
	status := c.statusLocked()
	c.mu.Unlock()

	c.notify(status)
}

// SetAutoAdvance toggles advancing after the loop budget is spent. It takes
// effect at the next advance decision.
func (c *Controller) SetAutoAdvance(enabled bool) {
	c.mu.Lock()
	c.opts.AutoAdvance = enabled
	status := c.statusLocked()
	c.mu.Unlock()

	c.notify(status)
}

func (c *Controller) playLocked(key segment.Key) bool {
	seg, ok := c.seq.Lookup(key).Get()
	if !ok {
		log.Debugf("play %s: not in sequence", key)
		return false
	}

	// cancel-before-replace
	c.generation++
	c.cancelTimerLocked()

	p, ok := c.host.Player().Get()
	if !ok {
		log.Warnf("play %s: player unavailable", key)
		c.state = StateError
		c.session = mo.None[*session]()
		c.seq.Activate(mo.None[segment.Key]())
		return true
	}

	if c.opts.Rate > 0 {
		p.SetRate(c.opts.Rate)
	}
	p.Seek(seg.Start, c.opts.SeekAhead)
	p.Play()

	s := &session{segment: seg}
	c.session = mo.Some(s)
	c.state = StatePlaying
	c.seq.Activate(mo.Some(key))
	c.armLocked(s)

	c.logger().Debugf("playing [%.2f, %.2f] %q", seg.Start, seg.End, seg.Label)
	return true
}

func (c *Controller) armLocked(s *session) {
	gen := c.generation
	s.timer = c.opts.Clock.AfterFunc(c.opts.PollInterval, func() {
		c.tick(gen)
	})
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	changed := c.tickLocked(gen)
	status := c.statusLocked()
	c.mu.Unlock()

	if changed {
		c.notify(status)
	}
}

func (c *Controller) tickLocked(gen uint64) bool {
	s, ok := c.session.Get()
	if gen != c.generation || !ok || c.state != StatePlaying {
		// stale timer from a superseded session
		return false
	}

	pos, err := c.position()
	if err != nil {
		s.failures++
		if s.failures >= c.opts.MaxFailures {
			c.logger().Warnf("giving up after %d failed polls: %v", s.failures, err)
			c.haltLocked(StateError)
			return true
		}
		c.armLocked(s)
		return false
	}
	s.failures = 0

	if pos < s.segment.End-c.opts.EndTolerance {
		c.armLocked(s)
		return false
	}

	s.repeat++
	if s.repeat < c.opts.Loops {
		p, ok := c.host.Player().Get()
		if !ok {
			c.haltLocked(StateError)
			return true
		}
		p.Seek(s.segment.Start, c.opts.SeekAhead)
		p.Play()
		c.armLocked(s)
		return true
	}

	c.cancelTimerLocked()
	key := s.segment.Key()

	if c.opts.AutoAdvance {
		if next, ok := c.seq.NextAfter(key).Get(); ok {
			c.logger().Debugf("advancing to %s", next.Key())
			if c.playLocked(next.Key()) {
				return true
			}
		}
	}

	c.haltLocked(StateIdle)
	return true
}

// position reads the player clock. A missing handle or a non-finite value
// counts as a failed read.
func (c *Controller) position() (float64, error) {
	p, ok := c.host.Player().Get()
	if !ok {
		return 0, player.ErrNoPlayer
	}

	pos, err := p.CurrentTime()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0, errNonFinite
	}
	return pos, nil
}

// haltLocked invalidates the session, pauses the player if one is left, and
// settles in state.
func (c *Controller) haltLocked(state State) {
	c.generation++
	c.cancelTimerLocked()
	c.session = mo.None[*session]()
	c.state = state
	c.seq.Activate(mo.None[segment.Key]())

	if p, ok := c.host.Player().Get(); ok {
		p.Pause()
	}
}

func (c *Controller) cancelTimerLocked() {
	if s, ok := c.session.Get(); ok && s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (c *Controller) statusLocked() Status {
	status := Status{
		State:      c.state,
		Key:        mo.None[segment.Key](),
		Loops:      c.opts.Loops,
		Generation: c.generation,
		Rate:       c.opts.Rate,
		Advance:    c.opts.AutoAdvance,
	}
	if s, ok := c.session.Get(); ok {
		status.Key = mo.Some(s.segment.Key())
		status.Repeat = s.repeat
	}
	return status
}

func (c *Controller) notify(status Status) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(status)
	}
}

func (c *Controller) logger() *logrus.Entry {
	fields := logrus.Fields{"generation": c.generation}
	if s, ok := c.session.Get(); ok {
		fields["key"] = s.segment.Key().String()
		fields["repeat"] = s.repeat
	}
	return log.WithFields(fields)
}
