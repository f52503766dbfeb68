package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/reprise-cli/reprise/internal/ui"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/sequence"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	minRate  = 0.25
	maxRate  = 4.0
	rateStep = 0.25
)

type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	options *Options

	spinnerC spinner.Model
	helpC    help.Model
	notifier *ui.Model

	segments    []segment.Segment
	cursor      int
	status      playback.Status
	unknownOnly bool
	autoAdvance bool
	rate        float64

	lastError error

	width, height int
}

func newBubble(options *Options) *statefulBubble {
	b := &statefulBubble{
		keymap:      newStatefulKeymap(),
		options:     options,
		spinnerC:    spinner.New(),
		helpC:       help.New(),
		notifier:    &ui.Model{},
		unknownOnly: options.UnknownOnly,
		autoAdvance: options.AutoAdvance,
		rate:        options.Rate,
	}

	b.spinnerC.Spinner = spinner.Dot
	b.spinnerC.Style = style.New().Foreground(style.AccentColor)

	if b.rate <= 0 {
		b.rate = 1
	}

	b.status = options.Controller.Status()
	b.refresh()

	if options.Launch == nil {
		b.setState(sessionState)
	} else {
		b.setState(loadingState)
	}

	return b
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

// refresh reloads the filtered segments and keeps the cursor on the same
// segment, or on the one that now follows it.
func (b *statefulBubble) refresh() {
	anchor := b.selected()
	b.segments = b.options.Sequence.Segments()

	if len(b.segments) == 0 {
		b.cursor = 0
		return
	}

	if key, ok := anchor.Get(); ok {
		if _, i, found := lo.FindIndexOf(b.segments, func(s segment.Segment) bool {
			return s.Key() == key
		}); found {
			b.cursor = i
			return
		}

		if next, ok := sequence.NextAfter(b.segments, key).Get(); ok {
			_, b.cursor, _ = lo.FindIndexOf(b.segments, func(s segment.Segment) bool {
				return s.Key() == next.Key()
			})
			return
		}
	}

	b.cursor = lo.Clamp(b.cursor, 0, len(b.segments)-1)
}

func (b *statefulBubble) selected() mo.Option[segment.Key] {
	if b.cursor < 0 || b.cursor >= len(b.segments) {
		return mo.None[segment.Key]()
	}
	return mo.Some(b.segments[b.cursor].Key())
}

func (b *statefulBubble) moveCursor(delta int) {
	if len(b.segments) == 0 {
		return
	}
	b.cursor = lo.Clamp(b.cursor+delta, 0, len(b.segments)-1)
}

func (b *statefulBubble) filter() sequence.Filter {
	if b.unknownOnly {
		return sequence.UnknownOnly
	}
	return sequence.All
}

func (b *statefulBubble) result() *Result {
	last := b.status.Key
	if last.IsAbsent() {
		last = b.selected()
	}

	key, ok := last.Get()
	if !ok {
		return &Result{Last: mo.None[segment.Segment]()}
	}

	if seg, ok := b.options.Sequence.Lookup(key).Get(); ok {
		return &Result{Last: mo.Some(seg)}
	}

	seg, ok := lo.Find(b.segments, func(s segment.Segment) bool { return s.Key() == key })
	if !ok {
		return &Result{Last: mo.None[segment.Segment]()}
	}
	return &Result{Last: mo.Some(seg)}
}

func (b *statefulBubble) resize(width, height int) {
	b.width = width
	b.height = height
	b.helpC.Width = width
}
