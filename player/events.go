package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/reprise-cli/reprise/log"
)

// Event is a notification pushed by mpv, such as "shutdown", "end-file" or "seek".
type Event struct {
	Name   string
	Reason string
}

// EventDisconnected is delivered once when the event connection drops.
const EventDisconnected = "disconnected"

// EventListener keeps a dedicated connection open and forwards mpv events.
type EventListener struct {
	socketPath string
	callback   func(Event)

	mu        sync.Mutex
	conn      net.Conn
	listening bool
}

// NewEventListener creates a listener for the given socket.
func NewEventListener(socketPath string, callback func(Event)) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start connects and begins the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	el.conn = conn
	el.listening = true

	go el.readLoop(conn)

	log.Debugf("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection. The read loop exits without reporting a disconnect.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	el.listening = false
	_ = el.conn.Close()
}

func (el *EventListener) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil || msg.Event == "" {
			continue
		}
		el.callback(Event{Name: msg.Event, Reason: msg.Reason})
	}

	el.mu.Lock()
	stopped := !el.listening
	el.listening = false
	el.mu.Unlock()

	if !stopped {
		if err := scanner.Err(); err != nil {
			log.Warnf("event listener read error: %v", err)
		}
		el.callback(Event{Name: EventDisconnected})
	}
}
