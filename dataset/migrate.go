package dataset

import (
	"fmt"
	"strings"

	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
)

// migrate upgrades a record read from disk to the current Version in place.
func migrate(d *Dataset) error {
	if d.Version > Version {
		return fmt.Errorf("dataset %s has schema version %d, newer than supported %d", d.ID, d.Version, Version)
	}

	for d.Version < Version {
		step, ok := migrations[d.Version]
		if !ok {
			return fmt.Errorf("no migration from schema version %d", d.Version)
		}

		step(d)
		log.Infof("migrated dataset %s to schema version %d", d.ID, d.Version+1)
		d.Version++
	}

	return nil
}

var migrations = map[int]func(*Dataset){
	// Version 0 kept markers in insertion order with untrimmed labels
	// and stored a zero window instead of omitting it.
	0: func(d *Dataset) {
		d.Markers = marker.Sorted(d.Markers)
		for i := range d.Markers {
			d.Markers[i].Label = strings.TrimSpace(d.Markers[i].Label)
		}

		if d.Window != nil && *d.Window == (segment.WindowConfig{}) {
			d.Window = nil
		}
	},
}
