package sequence

import (
	"testing"

	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type liveSource struct {
	markers []marker.Marker
	window  segment.WindowConfig
}

func (s *liveSource) Markers() []marker.Marker     { return s.markers }
func (s *liveSource) Window() segment.WindowConfig { return s.window }

func newScenario() *liveSource {
	window := segment.DefaultWindow()
	window.WindowSec = 2
	return &liveSource{
		markers: []marker.Marker{
			{T: 0, Label: "a"},
			{T: 5, Label: "b"},
			{T: 12, Label: "c", Level: marker.Known},
		},
		window: window,
	}
}

func labels(segments []segment.Segment) []string {
	return lo.Map(segments, func(s segment.Segment, _ int) string { return s.Label })
}

func TestApply(t *testing.T) {
	Convey("Given segments with mixed levels", t, func() {
		src := newScenario()
		segments := segment.Build(src.markers, src.window)

		Convey("UnknownOnly keeps order and drops known markers", func() {
			So(labels(Apply(segments, UnknownOnly)), ShouldResemble, []string{"a", "b"})
		})

		Convey("All keeps everything", func() {
			So(labels(Apply(segments, All)), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("NextAfter uses strict ordering on the start time", func() {
			So(NextAfter(segments, 0).MustGet().Label, ShouldEqual, "b")
			So(NextAfter(segments, 4).MustGet().Label, ShouldEqual, "b")
			So(NextAfter(segments, 12).IsPresent(), ShouldBeFalse)
		})

		Convey("Find resolves by identity", func() {
			So(Find(segments, 5).MustGet().Label, ShouldEqual, "b")
			So(Find(segments, 6).IsPresent(), ShouldBeFalse)
		})
	})
}

func TestState(t *testing.T) {
	Convey("Given a state filtering unknown markers", t, func() {
		src := newScenario()
		state := New(src, UnknownOnly)

		Convey("The filtered view holds a and b", func() {
			So(labels(state.Segments()), ShouldResemble, []string{"a", "b"})
			So(state.First().MustGet().Label, ShouldEqual, "a")
		})

		Convey("Known markers cannot be looked up", func() {
			So(state.Lookup(12).IsPresent(), ShouldBeFalse)
			So(state.Lookup(0).IsPresent(), ShouldBeTrue)
		})

		Convey("NextAfter skips filtered-out markers", func() {
			So(state.NextAfter(0).MustGet().Label, ShouldEqual, "b")
			So(state.NextAfter(5).IsPresent(), ShouldBeFalse)
		})

		Convey("When the source changes a level", func() {
			src.markers[1].Level = marker.Known

			Convey("The next query reflects it without a rebuild call", func() {
				So(labels(state.Segments()), ShouldResemble, []string{"a"})
				So(state.NextAfter(0).IsPresent(), ShouldBeFalse)
			})

			Convey("NextAfter still works from a key that was filtered out", func() {
				src.markers[2].Level = marker.Unknown
				So(state.NextAfter(5).MustGet().Label, ShouldEqual, "c")
			})
		})

		Convey("Switching the filter to All exposes c", func() {
			state.SetFilter(All)
			So(state.NextAfter(5).MustGet().Label, ShouldEqual, "c")
		})

		Convey("The active key is tracked separately from the list", func() {
			So(state.Active().IsPresent(), ShouldBeFalse)
			state.Activate(mo.Some(state.Lookup(5).MustGet().Key()))
			snap := state.Snapshot()
			So(snap.Active.MustGet(), ShouldEqual, segment.Key(5))
			So(snap.Segments, ShouldHaveLength, 2)
		})
	})
}
