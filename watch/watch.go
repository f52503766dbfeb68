// Package watch reports edits to a single file on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/reprise-cli/reprise/log"
)

// DefaultDelay coalesces the bursts of events editors produce on save.
const DefaultDelay = 150 * time.Millisecond

// File calls onChange after path is written, created or replaced, until ctx
// is done. Bursts closer together than delay produce one call.
//
// The parent directory is watched rather than the file, so editors that
// save through a rename are still seen.
func File(ctx context.Context, path string, delay time.Duration, onChange func()) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, onChange)
	}

	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != path {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				log.Debugf("watch: %s %s", event.Op, event.Name)
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch %s: %v", path, err)
		}
	}
}
