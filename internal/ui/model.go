// Package ui holds the transient notification line shown under the TUI.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/style"
)

// NotificationDuration is how long a notification stays visible.
const NotificationDuration = 3 * time.Second

// Model displays the most recent notification until it expires.
type Model struct {
	notification string
	serial       int
}

// NotificationMsg carries a notification text into Update.
type NotificationMsg string

type clearMsg struct{ serial int }

// Notify returns a command that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg(text)
	}
}

func clearAfter(serial int) tea.Cmd {
	return tea.Tick(NotificationDuration, func(time.Time) tea.Msg {
		return clearMsg{serial: serial}
	})
}

// Update consumes notification messages. A clear scheduled for an older
// notification leaves a newer one alone.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.serial++
		m.notification = string(msg)
		return clearAfter(m.serial)
	case clearMsg:
		if msg.serial == m.serial {
			m.notification = ""
		}
	}
	return nil
}

// Current returns the visible notification.
func (m *Model) Current() string {
	return m.notification
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
