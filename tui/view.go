package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case sessionState:
		output = b.viewSession()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(true, []string{
		style.Title(b.options.Title),
		"",
		b.spinnerC.View() + " Starting player",
	})
}

func (b *statefulBubble) viewSession() string {
	header := []string{
		style.Title(b.options.Title) + "  " + b.viewFilterTag(),
		b.viewStatus(),
		"",
	}

	// lines taken by padding, header and help
	height := b.height - len(header) - 4
	if height < 3 {
		height = len(b.segments)
	}

	if len(b.segments) == 0 {
		empty := "No segments"
		if b.unknownOnly {
			empty = icon.Get(icon.Success) + " Everything here is known. Press f to show all."
		}
		return b.renderLines(true, append(header, style.Faint(empty)))
	}

	from, to := window(b.cursor, len(b.segments), height)
	active := b.status.Key

	width := b.width - 4
	rows := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		seg := b.segments[i]
		isActive := active.IsPresent() && active.MustGet() == seg.Key()
		rows = append(rows, renderSegment(seg, i == b.cursor, isActive, b.viewRepeat(), width))
	}

	return b.renderLines(true, append(header, rows...))
}

func (b *statefulBubble) viewFilterTag() string {
	if b.unknownOnly {
		return style.Tag(color.New("230"), color.Purple)("unknown")
	}
	return style.Tag(color.New("230"), color.Blue)("all")
}

func (b *statefulBubble) viewRepeat() string {
	if b.status.State != playback.StatePlaying {
		return ""
	}
	return fmt.Sprintf("%s %d/%d", icon.Get(icon.Repeat), b.status.Repeat+1, b.status.Loops)
}

func (b *statefulBubble) viewStatus() string {
	var state string
	switch b.status.State {
	case playback.StatePlaying:
		state = style.Fg(color.Green)("playing")
	case playback.StateError:
		state = style.Fg(color.Red)("player not responding")
	default:
		state = style.Faint("idle")
	}

	parts := []string{
		state,
		fmt.Sprintf("%gx", b.rate),
		lo.Ternary(b.autoAdvance, icon.Get(icon.Advance)+" auto", "manual"),
		fmt.Sprintf("%d segments", len(b.segments)),
	}

	return strings.Join(parts, style.Faint(" · "))
}

func (b *statefulBubble) viewError() string {
	errorMsg := wrap.String(style.ErrorTitle("Error")+" "+b.lastError.Error(), b.width-4)
	return b.renderLines(true, []string{
		style.Title(b.options.Title),
		"",
		icon.Get(icon.Fail) + " " + errorMsg,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h+3 {
			l += strings.Repeat("\n", b.height-h-3)
		}
		l += "\n" + b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

// window returns the [from, to) slice of n rows of the given height that keeps
// cursor in view, roughly centred.
func window(cursor, n, height int) (from, to int) {
	if height <= 0 || n <= height {
		return 0, n
	}

	from = cursor - height/2
	from = lo.Clamp(from, 0, n-height)
	return from, from + height
}
