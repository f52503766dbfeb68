package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/sequence"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeController struct {
	gen     uint64
	played  []segment.Key
	stops   int
	rate    float64
	advance bool
	status  playback.Status
}

func (c *fakeController) Play(key segment.Key) {
	c.gen++
	c.played = append(c.played, key)
	c.status = playback.Status{State: playback.StatePlaying, Key: mo.Some(key), Loops: 3, Generation: c.gen}
}

func (c *fakeController) Stop() {
	c.gen++
	c.stops++
	c.status = playback.Status{State: playback.StateIdle, Key: mo.None[segment.Key](), Generation: c.gen}
}

func (c *fakeController) Status() playback.Status { return c.status }
func (c *fakeController) SetRate(rate float64)    { c.rate = rate }
func (c *fakeController) SetAutoAdvance(on bool)  { c.advance = on }

type source struct {
	markers []marker.Marker
}

func (s *source) Markers() []marker.Marker     { return s.markers }
func (s *source) Window() segment.WindowConfig { return segment.DefaultWindow() }

func (s *source) ToggleLevel(key segment.Key) (marker.Level, error) {
	for i := range s.markers {
		if segment.Key(s.markers[i].T) == key {
			s.markers[i].Level = s.markers[i].Level.Toggle()
			return s.markers[i].Level, nil
		}
	}
	return marker.Unknown, errors.New("missing")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestBubble() (*statefulBubble, *fakeController, *source) {
	src := &source{markers: []marker.Marker{
		{T: 0, Label: "a"},
		{T: 5, Label: "b"},
		{T: 12, Label: "c", Level: marker.Known},
	}}
	ctrl := &fakeController{status: playback.Status{Key: mo.None[segment.Key]()}}
	b := newBubble(&Options{
		Title:       "abc",
		Controller:  ctrl,
		Sequence:    sequence.New(src, sequence.UnknownOnly),
		Gate:        src,
		UnknownOnly: true,
		Rate:        1,
	})
	return b, ctrl, src
}

func TestSession(t *testing.T) {
	Convey("Given a session over a/b/c", t, func() {
		b, ctrl, _ := newTestBubble()

		Convey("It starts without a launcher directly in the session", func() {
			So(b.state, ShouldEqual, sessionState)
			So(b.segments, ShouldHaveLength, 2)
		})

		Convey("Enter plays the segment under the cursor", func() {
			b.Update(runes("j"))
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(ctrl.played, ShouldResemble, []segment.Key{5})
			So(b.View(), ShouldContainSubstring, "b")
		})

		Convey("The cursor stays inside the list", func() {
			b.Update(runes("k"))
			So(b.cursor, ShouldEqual, 0)
			b.Update(runes("G"))
			So(b.cursor, ShouldEqual, 1)
			b.Update(runes("j"))
			So(b.cursor, ShouldEqual, 1)
		})

		Convey("Marking a known moves the cursor to b", func() {
			b.Update(runes("x"))
			So(b.segments, ShouldHaveLength, 1)
			So(b.segments[0].Label, ShouldEqual, "b")
			So(b.cursor, ShouldEqual, 0)
		})

		Convey("The filter key shows every segment and keeps the cursor", func() {
			b.Update(runes("j"))
			b.Update(runes("f"))
			So(b.segments, ShouldHaveLength, 3)
			So(b.segments[b.cursor].Label, ShouldEqual, "b")
		})

		Convey("Rate changes are clamped", func() {
			b.Update(runes("+"))
			So(ctrl.rate, ShouldEqual, 1.25)
			for i := 0; i < 10; i++ {
				b.Update(runes("-"))
			}
			So(b.rate, ShouldEqual, minRate)
		})

		Convey("Auto-advance toggles on the controller", func() {
			b.Update(runes("a"))
			So(ctrl.advance, ShouldBeTrue)
		})

		Convey("Quit stops playback", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(ctrl.stops, ShouldEqual, 1)
		})

		Convey("A status update marks the playing row", func() {
			b.Update(statusMsg(playback.Status{State: playback.StatePlaying, Key: mo.Some(segment.Key(0)), Loops: 3}))
			So(b.viewRepeat(), ShouldContainSubstring, "1/3")
		})

		Convey("A late status from an older session is ignored", func() {
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			b.Update(runes("j"))
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(b.status.Generation, ShouldEqual, 2)

			b.Update(statusMsg(playback.Status{State: playback.StateIdle, Key: mo.None[segment.Key](), Generation: 1}))
			So(b.status.Key.MustGet(), ShouldEqual, segment.Key(5))

			last, ok := b.result().Last.Get()
			So(ok, ShouldBeTrue)
			So(last.Label, ShouldEqual, "b")

			b.Update(statusMsg(playback.Status{State: playback.StatePlaying, Key: mo.Some(segment.Key(5)), Repeat: 1, Loops: 3, Generation: 2}))
			So(b.status.Repeat, ShouldEqual, 1)
		})

		Convey("A closed player ends in the error state", func() {
			b.Update(playerDoneMsg{})
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, errPlayerClosed.Error())
		})

		Convey("The result reports the last played segment", func() {
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			last, ok := b.result().Last.Get()
			So(ok, ShouldBeTrue)
			So(last.Label, ShouldEqual, "a")
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("window keeps the cursor visible", t, func() {
		from, to := window(0, 3, 10)
		So([]int{from, to}, ShouldResemble, []int{0, 3})

		from, to = window(50, 100, 10)
		So([]int{from, to}, ShouldResemble, []int{45, 55})

		from, to = window(99, 100, 10)
		So([]int{from, to}, ShouldResemble, []int{90, 100})
	})
}
