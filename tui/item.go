package tui

import (
	"fmt"

	"github.com/muesli/reflow/truncate"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/style"
)

// renderSegment draws one row: cursor, play mark, level badge, time range and label.
func renderSegment(seg segment.Segment, selected, active bool, repeat string, width int) string {
	cursor := "  "
	if selected {
		cursor = style.Fg(style.AccentColor)("▌ ")
	}

	playing := "  "
	if active {
		playing = icon.Get(icon.Play) + " "
	}

	badge := icon.Get(icon.Unknown)
	if seg.Level == marker.Known {
		badge = icon.Get(icon.Known)
	}

	span := style.Faint(fmt.Sprintf("%s–%s", marker.FormatTime(seg.Start), marker.FormatTime(seg.End)))

	label := seg.Label
	if label == "" {
		label = style.Faint("(no label)")
	}

	line := fmt.Sprintf("%s%s%s %s  %s", cursor, playing, badge, span, label)
	if active && repeat != "" {
		line += "  " + style.Fg(color.Yellow)(repeat)
	}

	if width > 0 {
		line = truncate.StringWithTail(line, uint(width), "…")
	}

	switch {
	case active:
		return style.Bold(line)
	case seg.Level == marker.Known:
		return style.Faint(line)
	default:
		return line
	}
}
