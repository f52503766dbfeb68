package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/playback"
)

type (
	launchedMsg   struct{}
	statusMsg     playback.Status
	playerDoneMsg struct{}
	noticeMsg     string
)

var errPlayerClosed = errors.New("player closed")

func (b *statefulBubble) launch() tea.Cmd {
	return func() tea.Msg {
		if err := b.options.Launch(); err != nil {
			log.Error(err)
			return err
		}
		return launchedMsg{}
	}
}

func (b *statefulBubble) waitForStatus() tea.Cmd {
	if b.options.Statuses == nil {
		return nil
	}

	return func() tea.Msg {
		status, ok := <-b.options.Statuses
		if !ok {
			return nil
		}
		return statusMsg(status)
	}
}

func (b *statefulBubble) waitForPlayerDone() tea.Cmd {
	if b.options.PlayerDone == nil {
		return nil
	}

	done := b.options.PlayerDone()
	return func() tea.Msg {
		<-done
		return playerDoneMsg{}
	}
}

func (b *statefulBubble) waitForNotice() tea.Cmd {
	if b.options.Notices == nil {
		return nil
	}

	return func() tea.Msg {
		notice, ok := <-b.options.Notices
		if !ok {
			return nil
		}
		return noticeMsg(notice)
	}
}

// startSession runs once the player is available.
func (b *statefulBubble) startSession() tea.Cmd {
	b.setState(sessionState)
	b.options.Controller.SetAutoAdvance(b.autoAdvance)

	if key, ok := b.options.Start.Get(); ok {
		b.options.Controller.Play(key)
		b.refresh()
	}

	return b.waitForPlayerDone()
}
