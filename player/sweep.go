package player

import (
	"path/filepath"
	"time"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/log"
	"github.com/spf13/afero"
)

// StaleSocketAge is how old an IPC socket must be before SweepSockets removes it.
const StaleSocketAge = 24 * time.Hour

// SweepSockets removes IPC sockets in dir left behind by sessions that did
// not exit cleanly. Sockets younger than maxAge may belong to a running
// session and are kept. It returns how many were removed.
func SweepSockets(dir string, maxAge time.Duration) int {
	fs := filesystem.API()

	matches, err := afero.Glob(fs, filepath.Join(dir, "mpv-*.sock"))
	if err != nil {
		log.Warn(err)
		return 0
	}

	var removed int
	for _, path := range matches {
		info, err := fs.Stat(path)
		if err != nil || time.Since(info.ModTime()) < maxAge {
			continue
		}

		if err := fs.Remove(path); err != nil {
			log.Warnf("removing stale socket %s: %v", path, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Infof("removed %d stale player sockets", removed)
	}
	return removed
}
