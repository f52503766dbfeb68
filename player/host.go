package player

import (
	"errors"
	"sync"

	"github.com/reprise-cli/reprise/log"
	"github.com/samber/mo"
)

// ErrNoPlayer is returned when the host has no live player to offer.
var ErrNoPlayer = errors.New("no player is running")

// Host owns the mpv lifecycle and lends the scheduler a ready Player handle.
// The handle is withdrawn as soon as mpv shuts down or its socket drops.
type Host struct {
	binary string

	mu     sync.RWMutex
	mpv    *MPV
	events *EventListener
	done   chan struct{}
}

// NewHost creates a host that launches the given mpv binary.
func NewHost(binary string) *Host {
	return &Host{
		binary: binary,
		done:   make(chan struct{}),
	}
}

// Open launches mpv on target. Any previous instance is closed first.
func (h *Host) Open(target, title string) error {
	_ = h.Close()

	m, err := Launch(h.binary, target, title)
	if err != nil {
		return err
	}
	return h.adopt(m)
}

// AttachTo adopts an mpv instance listening on socketPath.
func (h *Host) AttachTo(socketPath string) error {
	_ = h.Close()

	m := Attach(socketPath)
	if !m.Alive() {
		_ = m.Close()
		return ErrNoPlayer
	}
	return h.adopt(m)
}

func (h *Host) adopt(m *MPV) error {
	listener := NewEventListener(m.Socket(), h.onEvent)
	if err := listener.Start(); err != nil {
		_ = m.Close()
		return err
	}

	h.mu.Lock()
	h.mpv = m
	h.events = listener
	h.done = make(chan struct{})
	h.mu.Unlock()

	log.Infof("player ready on %s", m.Socket())
	return nil
}

func (h *Host) onEvent(ev Event) {
	switch ev.Name {
	case "shutdown", EventDisconnected:
		log.Infof("player went away (%s)", ev.Name)
		h.withdraw()
	default:
		log.Tracef("mpv event %s %s", ev.Name, ev.Reason)
	}
}

// withdraw forgets the handle without stopping mpv.
func (h *Host) withdraw() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mpv == nil {
		return
	}
	h.mpv = nil
	close(h.done)
}

// Player returns the live handle, if any.
func (h *Host) Player() mo.Option[Player] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.mpv == nil {
		return mo.None[Player]()
	}
	return mo.Some[Player](h.mpv)
}

// Done is closed when the current player goes away.
func (h *Host) Done() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done
}

// Close stops event delivery and quits a launched mpv.
func (h *Host) Close() error {
	h.mu.Lock()
	m, listener := h.mpv, h.events
	h.events = nil
	h.mu.Unlock()

	if listener != nil {
		listener.Stop()
	}
	h.withdraw()

	if m == nil {
		return nil
	}
	return m.Close()
}
