package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line received from mpv: a reply carries request_id and
// error, an event carries event (and name/data for property changes).
type ipcMessage struct {
	RequestID *int64 `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
	Event     string `json:"event,omitempty"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
	pollDeadline = 100 * time.Millisecond
)

// ErrBusy is returned by a poll while earlier commands are still on their way to mpv.
var ErrBusy = errors.New("player is busy with earlier commands")

// ipcClient issues one command per connection and waits for the matching reply.
type ipcClient struct {
	socketPath string
	mu         sync.Mutex
	nextID     atomic.Int64
	closed     <-chan struct{} // cuts retries short when closed
}

func newIPCClient(socketPath string, closed <-chan struct{}) *ipcClient {
	return &ipcClient{socketPath: socketPath, closed: closed}
}

// call sends command, retrying transient connection errors. mpv errors such as
// "property unavailable" are not retried.
func (c *ipcClient) call(command ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-c.closed:
				return nil, fmt.Errorf("ipc command abandoned: %w", lastErr)
			case <-time.After(retryDelay):
			}
		}

		data, err := c.roundTrip(command, readDeadline)
		if err == nil {
			return data, nil
		}
		if _, ok := err.(*mpvError); ok {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// poll makes one attempt with a short deadline. It gives up at once when
// another command holds the client.
func (c *ipcClient) poll(command ...any) (any, error) {
	if !c.mu.TryLock() {
		return nil, ErrBusy
	}
	defer c.mu.Unlock()

	return c.roundTrip(command, pollDeadline)
}

// mpvError is an error reported by mpv itself in a reply.
type mpvError struct {
	command string
	message string
}

func (e *mpvError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.command, e.message)
}

func (c *ipcClient) roundTrip(command []any, deadline time.Duration) (any, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, deadline)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(deadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	id := c.nextID.Add(1)
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	// mpv broadcasts events to every client, so lines that are not our reply
	// are skipped.
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.RequestID == nil || *msg.RequestID != id {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, &mpvError{command: fmt.Sprint(command[0]), message: msg.Error}
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed before reply %d", id)
}
