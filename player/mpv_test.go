package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV answers JSON-IPC commands on a unix socket and records them.
type fakeMPV struct {
	listener net.Listener
	timePos  any

	mu       sync.Mutex
	commands [][]any
	conns    []net.Conn
}

func newFakeMPV(t *testing.T) *fakeMPV {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	l, err := net.Listen("unix", filepath.Join(dir, "mpv.sock"))
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeMPV{listener: l, timePos: 3.5}
	go f.serve()
	t.Cleanup(f.close)
	return f
}

func (f *fakeMPV) socket() string {
	return f.listener.Addr().String()
}

func (f *fakeMPV) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		go f.handle(conn)
	}
}

func (f *fakeMPV) handle(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		timePos := f.timePos
		f.mu.Unlock()

		// an unrelated broadcast event ahead of the reply
		_, _ = fmt.Fprintln(conn, `{"event":"playback-restart"}`)

		reply := map[string]any{"request_id": cmd.RequestID, "error": "success"}
		if cmd.Command[0] == "get_property" {
			switch cmd.Command[1] {
			case "time-pos":
				if timePos == nil {
					reply["error"] = "property unavailable"
				} else {
					reply["data"] = timePos
				}
			case "pid":
				reply["data"] = 4242
			}
		}
		data, _ := json.Marshal(reply)
		_, _ = conn.Write(append(data, '\n'))
	}
}

func (f *fakeMPV) broadcast(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_, _ = fmt.Fprintln(c, line)
	}
}

func (f *fakeMPV) recorded() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.commands...)
}

func (f *fakeMPV) close() {
	_ = f.listener.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
}

func TestMPV(t *testing.T) {
	Convey("Given an mpv instance reachable over IPC", t, func() {
		fake := newFakeMPV(t)
		mpv := Attach(fake.socket())

		Reset(func() { _ = mpv.Close() })

		Convey("CurrentTime reads time-pos and skips interleaved events", func() {
			pos, err := mpv.CurrentTime()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 3.5)
		})

		Convey("CurrentTime fails when nothing is loaded", func() {
			fake.mu.Lock()
			fake.timePos = nil
			fake.mu.Unlock()

			_, err := mpv.CurrentTime()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})

		Convey("Fire-and-forget commands map onto mpv commands", func() {
			mpv.Seek(12.5, true)
			mpv.Seek(1, false)
			mpv.Play()
			mpv.Pause()
			mpv.SetRate(0.75)

			So(waitFor(func() bool { return len(fake.recorded()) == 5 }), ShouldBeTrue)
			So(fake.recorded(), ShouldResemble, [][]any{
				{"seek", 12.5, "absolute+exact"},
				{"seek", 1.0, "absolute+keyframes"},
				{"set_property", "pause", false},
				{"set_property", "pause", true},
				{"set_property", "speed", 0.75},
			})
		})

		Convey("Alive answers through the pid property", func() {
			So(mpv.Alive(), ShouldBeTrue)
		})

		Convey("Close on an attached instance leaves mpv alone", func() {
			So(mpv.Close(), ShouldBeNil)
			So(fake.recorded(), ShouldBeEmpty)
		})
	})

	Convey("Given a socket nobody listens on", t, func() {
		mpv := Attach(filepath.Join(os.TempDir(), "reprise-missing.sock"))

		Reset(func() { _ = mpv.Close() })

		Convey("Reads fail and commands do not panic", func() {
			_, err := mpv.CurrentTime()
			So(err, ShouldNotBeNil)
			So(func() { mpv.Play() }, ShouldNotPanic)
			So(mpv.Alive(), ShouldBeFalse)
		})
	})
}

// silentSocket accepts connections and never answers.
func silentSocket(t *testing.T) string {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	l, err := net.Listen("unix", filepath.Join(dir, "mpv.sock"))
	if err != nil {
		t.Fatal(err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		_ = l.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return l.Addr().String()
}

func TestUnresponsiveMPV(t *testing.T) {
	Convey("Given an mpv that accepts commands but never replies", t, func() {
		mpv := Attach(silentSocket(t))

		Reset(func() { _ = mpv.Close() })

		Convey("Fire-and-forget commands return at once", func() {
			start := time.Now()
			for i := 0; i < 2*queueSize; i++ {
				mpv.Seek(float64(i), false)
				mpv.Play()
			}
			mpv.Pause()

			So(time.Since(start), ShouldBeLessThan, 50*time.Millisecond)
		})

		Convey("CurrentTime reports busy while commands are queued", func() {
			mpv.Seek(3, false)

			start := time.Now()
			_, err := mpv.CurrentTime()
			So(err, ShouldEqual, ErrBusy)
			So(time.Since(start), ShouldBeLessThan, 50*time.Millisecond)
		})

		Convey("CurrentTime gives up after one short attempt", func() {
			start := time.Now()
			_, err := mpv.CurrentTime()
			So(err, ShouldNotBeNil)
			So(time.Since(start), ShouldBeLessThan, pollDeadline+200*time.Millisecond)
		})
	})
}

func TestHost(t *testing.T) {
	Convey("Given a host attached to a running mpv", t, func() {
		fake := newFakeMPV(t)
		host := NewHost("mpv")
		So(host.AttachTo(fake.socket()), ShouldBeNil)

		Convey("It lends out a player handle", func() {
			p, ok := host.Player().Get()
			So(ok, ShouldBeTrue)
			pos, err := p.CurrentTime()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 3.5)
		})

		Convey("A shutdown event withdraws the handle", func() {
			// wait for the event connection to be accepted
			So(waitFor(func() bool {
				fake.mu.Lock()
				defer fake.mu.Unlock()
				return len(fake.conns) > 1
			}), ShouldBeTrue)

			fake.broadcast(`{"event":"shutdown"}`)

			So(waitFor(func() bool { return host.Player().IsAbsent() }), ShouldBeTrue)
			closed := false
			select {
			case <-host.Done():
				closed = true
			default:
			}
			So(closed, ShouldBeTrue)
		})

		Convey("Close is safe to repeat", func() {
			So(host.Close(), ShouldBeNil)
			So(host.Close(), ShouldBeNil)
			So(host.Player().IsPresent(), ShouldBeFalse)
		})
	})

	Convey("Attaching to a dead socket fails", t, func() {
		host := NewHost("mpv")
		So(host.AttachTo(filepath.Join(os.TempDir(), "reprise-missing.sock")), ShouldEqual, ErrNoPlayer)
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		_, err := sanitizeMediaTarget("--script=evil.lua")
		So(err, ShouldNotBeNil)

		_, err = sanitizeMediaTarget("file:///etc/passwd")
		So(err, ShouldNotBeNil)

		target, err := sanitizeMediaTarget(" https://www.youtube.com/watch?v=dQw4w9WgXcQ ")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

		So(sanitizeTitle("a\tb\nc\x00"), ShouldEqual, "a b c")
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
