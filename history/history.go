// Package history remembers where each dataset was last left off.
package history

import (
	"fmt"
	"time"

	"github.com/reprise-cli/reprise/internal/cache"
	"github.com/reprise-cli/reprise/marker"
	"github.com/reprise-cli/reprise/segment"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Entry is the resume point of one dataset.
type Entry struct {
	DatasetID string      `json:"dataset_id"`
	Title     string      `json:"title"`
	Key       segment.Key `json:"key"`
	Label     string      `json:"label"`
	Loops     int         `json:"loops"`
	PlayedAt  time.Time   `json:"played_at"`
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s @ %s %q", e.Title, marker.FormatTime(float64(e.Key)), e.Label)
}

var cacher = cache.New[string, *Entry](where.History(), 0, nil)

// now is replaced in tests.
var now = time.Now

// Get returns every saved resume point.
func Get() (map[string]*Entry, error) {
	return cacher.All()
}

// Save records seg as the resume point of the dataset.
func Save(datasetID, title string, seg segment.Segment, loops int) error {
	return cacher.Set(datasetID, &Entry{
		DatasetID: datasetID,
		Title:     title,
		Key:       seg.Key(),
		Label:     seg.Label,
		Loops:     loops,
		PlayedAt:  now(),
	})
}

// Last returns the resume point of the dataset, if any.
func Last(datasetID string) mo.Option[*Entry] {
	return cacher.Get(datasetID)
}

// Recent returns every resume point, most recent first.
func Recent() ([]*Entry, error) {
	entries, err := Get()
	if err != nil {
		return nil, err
	}

	recent := lo.Values(entries)
	slices.SortFunc(recent, func(a, b *Entry) int {
		return b.PlayedAt.Compare(a.PlayedAt)
	})

	return recent, nil
}

// Remove forgets the resume point of the dataset.
func Remove(datasetID string) error {
	return cacher.Delete(datasetID)
}

// Clear forgets every resume point.
func Clear() error {
	return cacher.Clear()
}
