package tui

import tea "github.com/charmbracelet/bubbletea"

func (b *statefulBubble) Init() tea.Cmd {
	listeners := tea.Batch(b.waitForStatus(), b.waitForNotice())

	if b.state == loadingState {
		return tea.Batch(b.spinnerC.Tick, b.launch(), listeners)
	}

	return tea.Batch(b.startSession(), listeners)
}
