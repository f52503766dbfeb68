package playback

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/player"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/sequence"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type seekCall struct {
	at    float64
	ahead bool
}

type fakePlayer struct {
	mu     sync.Mutex
	pos    float64
	err    error
	paused bool
	rate   float64
	seeks  []seekCall
	plays  int
}

func (p *fakePlayer) Seek(seconds float64, allowAhead bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = seconds
	p.seeks = append(p.seeks, seekCall{seconds, allowAhead})
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.plays++
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

func (p *fakePlayer) SetRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
}

func (p *fakePlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, p.err
}

func (p *fakePlayer) set(pos float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
}

func (p *fakePlayer) seekTargets() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.Map(p.seeks, func(s seekCall, _ int) float64 { return s.at })
}

type fakeHost struct {
	player mo.Option[player.Player]
}

func (h *fakeHost) Player() mo.Option[player.Player] { return h.player }

type manualTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualClock fires pending callbacks only when told to.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
	all     []*manualTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.pending = append(c.pending, t)
	c.all = append(c.all, t)
	return t
}

// Tick fires every callback armed before the call.
func (c *manualClock) Tick() {
	c.mu.Lock()
	due := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, t := range due {
		if t.stopped {
			continue
		}
		t.fired = true
		t.f()
	}
}

func (c *manualClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(lo.Filter(c.pending, func(t *manualTimer, _ int) bool { return !t.stopped }))
}

type liveSource struct {
	mu      sync.Mutex
	markers []marker.Marker
	window  segment.WindowConfig
}

func (s *liveSource) Markers() []marker.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]marker.Marker(nil), s.markers...)
}

func (s *liveSource) Window() segment.WindowConfig { return s.window }

func (s *liveSource) setLevel(i int, level marker.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[i].Level = level
}

type fixture struct {
	player  *fakePlayer
	host    *fakeHost
	clock   *manualClock
	source  *liveSource
	seq     *sequence.State
	ctrl    *Controller
	changes []Status
}

func newFixture(opts Options) *fixture {
	window := segment.DefaultWindow()
	window.WindowSec = 2

	f := &fixture{
		player: &fakePlayer{},
		clock:  &manualClock{},
		source: &liveSource{
			markers: []marker.Marker{
				{T: 0, Label: "a", Level: marker.Unknown},
				{T: 5, Label: "b", Level: marker.Unknown},
				{T: 12, Label: "c", Level: marker.Known},
			},
			window: window,
		},
	}
	f.host = &fakeHost{player: mo.Some[player.Player](f.player)}
	f.seq = sequence.New(f.source, sequence.UnknownOnly)

	opts.Clock = f.clock
	opts.EndTolerance = window.EndTolerance
	opts.OnChange = func(s Status) { f.changes = append(f.changes, s) }
	f.ctrl = New(f.host, f.seq, opts)
	return f
}

// finish moves the fake player to the end of the segment and lets one poll run.
func (f *fixture) finish(key segment.Key) {
	seg := f.seq.Lookup(key).MustGet()
	f.player.set(seg.End)
	f.clock.Tick()
}

func TestPlay(t *testing.T) {
	Convey("Given a controller over the a/b/c markers", t, func() {
		f := newFixture(Options{Loops: 2, AutoAdvance: true})

		Convey("When playing a key that is not in the filtered sequence", func() {
			f.ctrl.Play(segment.Key(12))

			Convey("Then nothing happens", func() {
				So(f.ctrl.Status().State, ShouldEqual, StateIdle)
				So(f.player.seekTargets(), ShouldBeEmpty)
				So(f.clock.Armed(), ShouldEqual, 0)
				So(f.changes, ShouldBeEmpty)
			})
		})

		Convey("When playing a", func() {
			f.ctrl.Play(segment.Key(0))

			Convey("Then it seeks to the start, plays and arms one poll", func() {
				status := f.ctrl.Status()
				So(status.State, ShouldEqual, StatePlaying)
				So(status.Key.MustGet(), ShouldEqual, segment.Key(0))
				So(status.Repeat, ShouldEqual, 0)
				So(f.player.seekTargets(), ShouldResemble, []float64{0})
				So(f.player.plays, ShouldEqual, 1)
				So(f.clock.Armed(), ShouldEqual, 1)
				So(f.seq.Active().MustGet(), ShouldEqual, segment.Key(0))
			})

			Convey("Then polls before the end keep the loop going", func() {
				f.player.set(3)
				f.clock.Tick()
				f.clock.Tick()

				So(f.ctrl.Status().Repeat, ShouldEqual, 0)
				So(f.clock.Armed(), ShouldEqual, 1)
			})

			Convey("Then the scenario runs a, a, b, b and ends idle", func() {
				f.finish(segment.Key(0))
				So(f.ctrl.Status().Repeat, ShouldEqual, 1)
				So(f.ctrl.Status().Key.MustGet(), ShouldEqual, segment.Key(0))

				f.finish(segment.Key(0))
				So(f.ctrl.Status().Key.MustGet(), ShouldEqual, segment.Key(5))
				So(f.ctrl.Status().Repeat, ShouldEqual, 0)

				f.finish(segment.Key(5))
				f.finish(segment.Key(5))

				status := f.ctrl.Status()
				So(status.State, ShouldEqual, StateIdle)
				So(status.Key.IsAbsent(), ShouldBeTrue)
				So(f.player.seekTargets(), ShouldResemble, []float64{0, 0, 5, 5})
				So(f.player.paused, ShouldBeTrue)
				So(f.clock.Armed(), ShouldEqual, 0)
				So(f.seq.Active().IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestLoops(t *testing.T) {
	Convey("Given auto-advance is off", t, func() {
		for _, loops := range []int{1, 2, 5} {
			f := newFixture(Options{Loops: loops})
			f.ctrl.Play(segment.Key(5))

			for i := 0; i < loops; i++ {
				f.finish(segment.Key(5))
			}

			Convey(fmt.Sprintf("Then a budget of %d plays the segment %d times", loops, loops), func() {
				So(len(f.player.seekTargets()), ShouldEqual, loops)
				So(f.ctrl.Status().State, ShouldEqual, StateIdle)
				So(f.clock.Armed(), ShouldEqual, 0)
			})
		}
	})

	Convey("Given auto-advance is on and the last unknown segment plays", t, func() {
		f := newFixture(Options{Loops: 1, AutoAdvance: true})
		f.ctrl.Play(segment.Key(5))
		f.finish(segment.Key(5))

		Convey("Then the known segment after it is skipped", func() {
			So(f.ctrl.Status().State, ShouldEqual, StateIdle)
			So(f.player.seekTargets(), ShouldResemble, []float64{5})
		})
	})
}

func TestStop(t *testing.T) {
	Convey("Given a playing controller", t, func() {
		f := newFixture(Options{Loops: 3})
		f.ctrl.Play(segment.Key(0))
		gen := f.ctrl.Status().Generation

		Convey("When stop is called twice", func() {
			f.ctrl.Stop()
			first := f.ctrl.Status()
			f.ctrl.Stop()
			second := f.ctrl.Status()

			Convey("Then the second call is a no-op", func() {
				So(first.State, ShouldEqual, StateIdle)
				So(first.Generation, ShouldBeGreaterThan, gen)
				So(second, ShouldResemble, first)
				So(f.player.paused, ShouldBeTrue)
				So(f.clock.Armed(), ShouldEqual, 0)
				So(len(f.changes), ShouldEqual, 2)
			})
		})

		Convey("When stop is called with no player left", func() {
			f.host.player = mo.None[player.Player]()
			f.ctrl.Stop()

			So(f.ctrl.Status().State, ShouldEqual, StateIdle)
		})
	})

	Convey("Given an idle controller", t, func() {
		f := newFixture(Options{})
		f.ctrl.Stop()

		So(f.ctrl.Status().State, ShouldEqual, StateIdle)
		So(f.changes, ShouldBeEmpty)
	})
}

func TestStaleGeneration(t *testing.T) {
	Convey("Given a session superseded by another play", t, func() {
		f := newFixture(Options{Loops: 2})
		f.ctrl.Play(segment.Key(0))
		stale := f.clock.all[0]

		f.ctrl.Play(segment.Key(5))
		So(stale.stopped, ShouldBeTrue)

		Convey("When the old callback runs anyway", func() {
			f.player.set(100)
			stale.f()

			Convey("Then the new session is untouched", func() {
				status := f.ctrl.Status()
				So(status.Key.MustGet(), ShouldEqual, segment.Key(5))
				So(status.Repeat, ShouldEqual, 0)
				So(f.player.seekTargets(), ShouldResemble, []float64{0, 5})
			})
		})
	})

	Convey("Given a stopped session", t, func() {
		f := newFixture(Options{Loops: 2})
		f.ctrl.Play(segment.Key(0))
		stale := f.clock.all[0]
		f.ctrl.Stop()

		Convey("When the old callback runs anyway", func() {
			f.player.set(100)
			stale.f()

			Convey("Then the controller stays idle", func() {
				So(f.ctrl.Status().State, ShouldEqual, StateIdle)
				So(f.player.seekTargets(), ShouldResemble, []float64{0})
				So(f.clock.Armed(), ShouldEqual, 0)
			})
		})
	})
}

func TestMutation(t *testing.T) {
	Convey("Given a playing a with b still unknown", t, func() {
		f := newFixture(Options{Loops: 2, AutoAdvance: true})
		f.ctrl.Play(segment.Key(0))

		Convey("When a is marked known mid-loop", func() {
			f.source.setLevel(0, marker.Known)
			f.finish(segment.Key(5))

			Convey("Then the loop is not interrupted", func() {
				So(f.ctrl.Status().Key.MustGet(), ShouldEqual, segment.Key(0))
				So(f.ctrl.Status().Repeat, ShouldEqual, 1)
			})

			Convey("Then the advance still finds b", func() {
				f.finish(segment.Key(5))
				So(f.ctrl.Status().Key.MustGet(), ShouldEqual, segment.Key(5))
			})
		})

		Convey("When b is marked known mid-loop", func() {
			f.source.setLevel(1, marker.Known)
			f.finish(segment.Key(0))
			f.finish(segment.Key(0))

			Convey("Then the advance sees the live sequence and ends idle", func() {
				So(f.ctrl.Status().State, ShouldEqual, StateIdle)
				So(f.player.seekTargets(), ShouldResemble, []float64{0, 0})
			})
		})

		Convey("When c is marked unknown mid-loop", func() {
			f.source.setLevel(1, marker.Known)
			f.source.setLevel(2, marker.Unknown)
			f.finish(segment.Key(0))
			f.finish(segment.Key(0))

			Convey("Then the advance jumps to c", func() {
				So(f.ctrl.Status().Key.MustGet(), ShouldEqual, segment.Key(12))
			})
		})
	})
}

func TestFailures(t *testing.T) {
	Convey("Given a player that stops answering", t, func() {
		f := newFixture(Options{Loops: 2, MaxFailures: 3})
		f.ctrl.Play(segment.Key(0))
		f.player.err = errors.New("broken pipe")

		Convey("When fewer polls than the bound fail", func() {
			f.clock.Tick()
			f.clock.Tick()

			Convey("Then the session keeps polling", func() {
				So(f.ctrl.Status().State, ShouldEqual, StatePlaying)
				So(f.clock.Armed(), ShouldEqual, 1)
			})

			Convey("Then a good read resets the count", func() {
				f.player.err = nil
				f.clock.Tick()
				f.player.err = errors.New("broken pipe")
				f.clock.Tick()
				f.clock.Tick()
				So(f.ctrl.Status().State, ShouldEqual, StatePlaying)
			})
		})

		Convey("When the bound is reached", func() {
			f.clock.Tick()
			f.clock.Tick()
			f.clock.Tick()

			Convey("Then the controller reports an error and stops polling", func() {
				So(f.ctrl.Status().State, ShouldEqual, StateError)
				So(f.clock.Armed(), ShouldEqual, 0)
			})

			Convey("Then play recovers", func() {
				f.player.err = nil
				f.ctrl.Play(segment.Key(5))
				So(f.ctrl.Status().State, ShouldEqual, StatePlaying)
			})
		})
	})

	Convey("Given the player disappears mid-session", t, func() {
		f := newFixture(Options{Loops: 2, MaxFailures: 2})
		f.ctrl.Play(segment.Key(0))
		f.host.player = mo.None[player.Player]()
		f.clock.Tick()
		f.clock.Tick()

		So(f.ctrl.Status().State, ShouldEqual, StateError)
	})

	Convey("Given no player at all", t, func() {
		f := newFixture(Options{})
		f.host.player = mo.None[player.Player]()
		f.ctrl.Play(segment.Key(0))

		So(f.ctrl.Status().State, ShouldEqual, StateError)
		So(f.clock.Armed(), ShouldEqual, 0)
	})
}

func TestNonFinitePosition(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		Convey(fmt.Sprintf("Given a player reporting %v", bad), t, func() {
			f := newFixture(Options{Loops: 2, MaxFailures: 3})
			f.ctrl.Play(segment.Key(0))
			f.player.set(bad)

			Convey("Then reads below the bound are skipped ticks", func() {
				f.clock.Tick()
				f.clock.Tick()

				status := f.ctrl.Status()
				So(status.State, ShouldEqual, StatePlaying)
				So(status.Repeat, ShouldEqual, 0)
				So(f.clock.Armed(), ShouldEqual, 1)
				So(f.player.seekTargets(), ShouldResemble, []float64{0})
			})

			Convey("Then the bound moves the session to error", func() {
				f.clock.Tick()
				f.clock.Tick()
				f.clock.Tick()

				So(f.ctrl.Status().State, ShouldEqual, StateError)
				So(f.clock.Armed(), ShouldEqual, 0)
			})

			Convey("Then a finite read resets the count", func() {
				f.clock.Tick()
				f.clock.Tick()
				f.player.set(1)
				f.clock.Tick()
				f.player.set(bad)
				f.clock.Tick()
				f.clock.Tick()

				So(f.ctrl.Status().State, ShouldEqual, StatePlaying)
			})
		})
	}
}

// silentSocket accepts connections and never answers.
func silentSocket(t *testing.T) string {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	l, err := net.Listen("unix", filepath.Join(dir, "mpv.sock"))
	if err != nil {
		t.Fatal(err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		_ = l.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return l.Addr().String()
}

func TestUnresponsivePlayer(t *testing.T) {
	Convey("Given an mpv that never answers", t, func() {
		mpv := player.Attach(silentSocket(t))
		Reset(func() { _ = mpv.Close() })

		f := newFixture(Options{Loops: 2, Rate: 0.75, MaxFailures: 3})
		f.host.player = mo.Some[player.Player](mpv)
		interval := segment.DefaultWindow().PollInterval()

		Convey("Then play returns within one poll interval", func() {
			start := time.Now()
			f.ctrl.Play(segment.Key(0))

			So(time.Since(start), ShouldBeLessThan, interval)
			So(f.ctrl.Status().State, ShouldEqual, StatePlaying)

			Convey("And polls fail fast until the bound", func() {
				start := time.Now()
				f.clock.Tick()
				f.clock.Tick()
				f.clock.Tick()

				So(time.Since(start), ShouldBeLessThan, interval)
				So(f.ctrl.Status().State, ShouldEqual, StateError)
			})

			Convey("And stop returns within one poll interval", func() {
				start := time.Now()
				f.ctrl.Stop()

				So(time.Since(start), ShouldBeLessThan, interval)
				So(f.ctrl.Status().State, ShouldEqual, StateIdle)
			})
		})
	})
}

func TestSettings(t *testing.T) {
	Convey("Given a rate and seek-ahead", t, func() {
		f := newFixture(Options{Rate: 0.75, SeekAhead: true})
		f.ctrl.Play(segment.Key(0))

		So(f.player.rate, ShouldEqual, 0.75)
		So(f.player.seeks[0].ahead, ShouldBeTrue)

		Convey("When the rate changes", func() {
			f.ctrl.SetRate(1.25)
			So(f.player.rate, ShouldEqual, 1.25)
			So(f.ctrl.Status().Rate, ShouldEqual, 1.25)
		})

		Convey("When auto-advance is switched on mid-session", func() {
			f.ctrl.SetAutoAdvance(true)
			f.finish(segment.Key(0))
			So(f.ctrl.Status().Key.MustGet(), ShouldEqual, segment.Key(5))
		})
	})

	Convey("Status renders a short summary", t, func() {
		So(Status{State: StateIdle, Key: mo.None[segment.Key]()}.String(), ShouldEqual, "idle")
		So(StateError.String(), ShouldEqual, "error")
	})
}
