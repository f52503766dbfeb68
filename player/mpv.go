package player

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/where"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitTimeout       = 3 * time.Second
	queueSize         = 32
)

// MPV implements Player over mpv's JSON-IPC socket. Seek, Play, Pause and
// SetRate are queued to a single worker and return at once; the worker sends
// them in order.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	ipc        *ipcClient

	queue    chan []any
	pending  atomic.Int64
	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newMPV(socketPath string, cmd *exec.Cmd) *MPV {
	stop := make(chan struct{})
	m := &MPV{
		socketPath: socketPath,
		cmd:        cmd,
		ipc:        newIPCClient(socketPath, stop),
		queue:      make(chan []any, queueSize),
		stop:       stop,
		stopped:    make(chan struct{}),
	}
	if cmd != nil {
		m.exited = make(chan struct{})
	}

	go m.run()
	return m
}

func (m *MPV) run() {
	defer close(m.stopped)

	for {
		select {
		case command := <-m.queue:
			if _, err := m.ipc.call(command...); err != nil {
				log.Warnf("mpv %v: %v", command, err)
			}
			m.pending.Add(-1)
		case <-m.stop:
			m.drain()
			return
		}
	}
}

// drain sends what is still queued with one short attempt each, so a final
// pause reaches an attached mpv. An unreachable mpv drops the rest.
func (m *MPV) drain() {
	reachable := true
	for {
		select {
		case command := <-m.queue:
			if reachable {
				if _, err := m.ipc.poll(command...); err != nil {
					log.Debugf("mpv %v: %v", command, err)
					var mpvErr *mpvError
					reachable = errors.As(err, &mpvErr)
				}
			}
			m.pending.Add(-1)
		default:
			return
		}
	}
}

var _ Player = (*MPV)(nil)

// Launch starts binary (normally "mpv") paused on target and waits until its
// IPC socket accepts connections.
func Launch(binary, target, title string) (*MPV, error) {
	safeTarget, err := sanitizeMediaTarget(target)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}
	safeTitle := sanitizeTitle(title)

	socketPath := filepath.Join(where.Temp(), "mpv-"+uuid.NewString()+".sock")

	// Only what the scheduler depends on. Video output, hwdec and profiles
	// stay with the user's mpv.conf.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--force-media-title=%s", safeTitle),
		fmt.Sprintf("--title=%s", safeTitle),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=always",
		"--pause",
		safeTarget,
	}

	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	m := newMPV(socketPath, cmd)

	// reap the process so it never lingers as a zombie
	go func() {
		_ = cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		m.stopWorker()
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	return m, nil
}

// Attach connects to an mpv instance that was started elsewhere with
// --input-ipc-server=socketPath. Close on an attached instance leaves mpv running.
func Attach(socketPath string) *MPV {
	return newMPV(socketPath, nil)
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Seek issues an absolute seek. Precise seeks (allowAhead) may need to fetch
// data past the buffer; keyframe seeks stay cheap and approximate.
func (m *MPV) Seek(seconds float64, allowAhead bool) {
	flags := "absolute+keyframes"
	if allowAhead {
		flags = "absolute+exact"
	}
	m.fireAndForget("seek", seconds, flags)
}

// Play resumes playback.
func (m *MPV) Play() {
	m.fireAndForget("set_property", "pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() {
	m.fireAndForget("set_property", "pause", true)
}

// SetRate sets mpv's speed property.
func (m *MPV) SetRate(multiplier float64) {
	m.fireAndForget("set_property", "speed", multiplier)
}

// CurrentTime returns mpv's time-pos. It makes a single short attempt and
// fails with ErrBusy while queued commands have not reached mpv, so a position
// read never predates a seek.
func (m *MPV) CurrentTime() (float64, error) {
	if m.pending.Load() > 0 {
		return 0, ErrBusy
	}
	return m.getFloatProperty("time-pos")
}

// Alive reports whether mpv is responding to IPC commands.
func (m *MPV) Alive() bool {
	if m.exited != nil {
		select {
		case <-m.exited:
			return false
		default:
		}
	}

	_, err := m.ipc.call("get_property", "pid")
	return err == nil
}

// Wait returns a channel closed when a launched mpv exits. For an attached
// instance the channel never closes.
func (m *MPV) Wait() <-chan struct{} {
	if m.exited == nil {
		return make(chan struct{})
	}
	return m.exited
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Close quits a launched mpv, killing it if it does not exit in time, and
// removes the socket file.
func (m *MPV) Close() error {
	m.stopWorker()

	if m.cmd == nil {
		return nil
	}

	_, _ = m.ipc.call("quit")

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

func (m *MPV) stopWorker() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.stopped
}

func (m *MPV) fireAndForget(command ...any) {
	select {
	case <-m.stop:
		log.Debugf("mpv %v: player closed", command)
		return
	default:
	}

	m.pending.Add(1)
	select {
	case m.queue <- command:
	default:
		m.pending.Add(-1)
		log.Warnf("mpv %v: command queue full, dropped", command)
	}
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.ipc.poll("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("property %s: non-finite value", name)
	}

	return val, nil
}

// sanitizeMediaTarget rejects anything mpv could mistake for a flag.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "ytdl":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
