package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFile(t *testing.T) {
	Convey("Given a watched file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "lesson.txt")
		So(os.WriteFile(path, []byte("0\ta\n"), 0o644), ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls atomic.Int32
		changed := make(chan struct{}, 8)
		done := make(chan error, 1)
		go func() {
			done <- File(ctx, path, 20*time.Millisecond, func() {
				calls.Add(1)
				changed <- struct{}{}
			})
		}()

		// give the watcher time to register
		time.Sleep(100 * time.Millisecond)

		Convey("A burst of writes is reported once", func() {
			for i := 0; i < 3; i++ {
				So(os.WriteFile(path, []byte("0\ta\n5\tb\n"), 0o644), ShouldBeNil)
			}

			select {
			case <-changed:
			case <-time.After(2 * time.Second):
				t.Fatal("no change reported")
			}

			time.Sleep(100 * time.Millisecond)
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("Other files in the directory are ignored", func() {
			So(os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644), ShouldBeNil)
			time.Sleep(150 * time.Millisecond)
			So(calls.Load(), ShouldEqual, 0)
		})

		Convey("Cancelling the context stops the watch", func() {
			cancel()
			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				t.Fatal("watch did not stop")
			}
		})
	})
}
