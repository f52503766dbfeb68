package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/style"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	play, stop,
	toggleKnown, autoAdvance, filter,
	faster, slower,
	up, down, top, bottom,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		play: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("play")),
		),
		stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		toggleKnown: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle known"),
		),
		autoAdvance: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto-advance"),
		),
		filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "unknown/all"),
		),
		faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		slower: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "slower"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case loadingState:
		return h(k.forceQuit), h(k.forceQuit)
	case sessionState:
		return h(k.play, k.toggleKnown, k.stop, k.filter, k.showHelp, k.quit),
			h(k.play, k.stop, k.toggleKnown, k.autoAdvance, k.filter, k.faster, k.slower, k.up, k.down, k.top, k.bottom, k.quit)
	case errorState:
		return h(k.quit), h(k.quit)
	default:
		return h(), h()
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
