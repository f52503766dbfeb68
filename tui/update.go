package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/internal/ui"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/playback"
	"github.com/samber/lo"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case error:
		b.raiseError(msg)
	case statusMsg:
		cmds = append(cmds, b.onStatus(playback.Status(msg)), b.waitForStatus())
	case noticeMsg:
		b.refresh()
		cmds = append(cmds, ui.Notify(string(msg)), b.waitForNotice())
	case playerDoneMsg:
		b.raiseError(errPlayerClosed)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	switch b.state {
	case loadingState:
		cmds = append(cmds, b.updateLoading(msg))
	case sessionState:
		cmds = append(cmds, b.updateSession(msg))
	case errorState:
		cmds = append(cmds, b.updateError(msg))
	}

	return b, tea.Batch(cmds...)
}

func (b *statefulBubble) onStatus(status playback.Status) tea.Cmd {
	// statuses are delivered outside the controller lock and may arrive late
	if status.Generation < b.status.Generation {
		return nil
	}

	previous := b.status
	b.status = status
	b.refresh()

	if status.State == playback.StateError && previous.State != playback.StateError {
		return ui.Notify(icon.Get(icon.Fail) + " player stopped responding")
	}
	return nil
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case launchedMsg:
		return b.startSession()
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return cmd
	}
	return nil
}

func (b *statefulBubble) updateSession(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	ctrl := b.options.Controller

	switch {
	case key.Matches(keyMsg, b.keymap.quit):
		ctrl.Stop()
		return tea.Quit
	case key.Matches(keyMsg, b.keymap.play):
		if k, ok := b.selected().Get(); ok {
			ctrl.Play(k)
			b.status = ctrl.Status()
		}
	case key.Matches(keyMsg, b.keymap.stop):
		ctrl.Stop()
		b.status = ctrl.Status()
	case key.Matches(keyMsg, b.keymap.toggleKnown):
		return b.toggleKnown()
	case key.Matches(keyMsg, b.keymap.autoAdvance):
		b.autoAdvance = !b.autoAdvance
		ctrl.SetAutoAdvance(b.autoAdvance)
		return ui.Notify("auto-advance " + lo.Ternary(b.autoAdvance, "on", "off"))
	case key.Matches(keyMsg, b.keymap.filter):
		b.unknownOnly = !b.unknownOnly
		b.options.Sequence.SetFilter(b.filter())
		b.refresh()
		return ui.Notify(lo.Ternary(b.unknownOnly, "showing unknown only", "showing all"))
	case key.Matches(keyMsg, b.keymap.faster):
		return b.changeRate(rateStep)
	case key.Matches(keyMsg, b.keymap.slower):
		return b.changeRate(-rateStep)
	case key.Matches(keyMsg, b.keymap.up):
		b.moveCursor(-1)
	case key.Matches(keyMsg, b.keymap.down):
		b.moveCursor(1)
	case key.Matches(keyMsg, b.keymap.top):
		b.moveCursor(-len(b.segments))
	case key.Matches(keyMsg, b.keymap.bottom):
		b.moveCursor(len(b.segments))
	case key.Matches(keyMsg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) toggleKnown() tea.Cmd {
	k, ok := b.selected().Get()
	if !ok {
		return nil
	}

	label := b.segments[b.cursor].Label
	level, err := b.options.Gate.ToggleLevel(k)
	if err != nil {
		return ui.Notify(icon.Get(icon.Fail) + " " + err.Error())
	}

	// in the unknown-only view a segment marked known gives the cursor to its successor
	b.refresh()
	return ui.Notify(fmt.Sprintf("%s %q is %s", icon.Get(lo.Ternary(level == marker.Known, icon.Known, icon.Unknown)), label, level))
}

func (b *statefulBubble) changeRate(delta float64) tea.Cmd {
	rate := lo.Clamp(b.rate+delta, minRate, maxRate)
	if rate == b.rate {
		return nil
	}

	b.rate = rate
	b.options.Controller.SetRate(rate)
	return ui.Notify(fmt.Sprintf("speed %gx", rate))
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, b.keymap.quit) {
		b.options.Controller.Stop()
		return tea.Quit
	}
	return nil
}
