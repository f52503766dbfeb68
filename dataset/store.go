package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/internal/cache"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

var (
	ErrNotFound  = errors.New("dataset not found")
	ErrAmbiguous = errors.New("dataset query is ambiguous")
)

// Store keeps one JSON file per dataset plus an index of their summaries.
type Store struct {
	dir   string
	index *cache.Keyed[string, *Meta]
	now   func() time.Time
}

// NewStore opens a store rooted at dir with its index at indexPath.
func NewStore(dir, indexPath string) *Store {
	return &Store{
		dir:   dir,
		index: cache.New[string, *Meta](indexPath, 0, nil),
		now:   time.Now,
	}
}

// DefaultStore opens the store at the configured locations.
func DefaultStore() *Store {
	return NewStore(where.Datasets(), where.Index())
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Exists reports whether a dataset file with this id is present.
func (s *Store) Exists(id string) bool {
	exists, err := afero.Exists(filesystem.API(), s.path(id))
	return err == nil && exists
}

// Load reads and migrates the dataset with the given id.
func (s *Store) Load(id string) (*Dataset, error) {
	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	raw, err := filesystem.API().ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", id, err)
	}

	d := &Dataset{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", id, err)
	}

	if d.ID == "" {
		d.ID = id
	}

	version := d.Version
	if err := migrate(d); err != nil {
		return nil, err
	}

	if d.Version != version {
		if err := s.Save(d); err != nil {
			log.Warnf("could not persist migrated dataset %s: %v", id, err)
		}
	}

	return d, nil
}

// Save writes the dataset and refreshes its index entry.
func (s *Store) Save(d *Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}

	d.Version = Version
	d.UpdatedAt = s.now()

	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	if err := filesystem.WriteAtomic(s.path(d.ID), raw); err != nil {
		return fmt.Errorf("write dataset %s: %w", d.ID, err)
	}

	return s.index.Set(d.ID, d.Meta())
}

// Delete removes the dataset file and its index entry.
func (s *Store) Delete(id string) error {
	if !s.Exists(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := filesystem.API().Remove(s.path(id)); err != nil {
		return err
	}

	return s.index.Delete(id)
}

// List returns every indexed dataset sorted by title.
func (s *Store) List() ([]*Meta, error) {
	entries, err := s.index.All()
	if err != nil {
		return nil, err
	}

	// a cleared index is rebuilt from the files on disk
	if len(entries) == 0 {
		if n, err := s.Reindex(); err == nil && n > 0 {
			if entries, err = s.index.All(); err != nil {
				return nil, err
			}
		}
	}

	metas := lo.Values(entries)
	sort.SliceStable(metas, func(i, j int) bool {
		a, b := strings.ToLower(metas[i].Title), strings.ToLower(metas[j].Title)
		if a == b {
			return metas[i].ID < metas[j].ID
		}
		return a < b
	})

	return metas, nil
}

// Find resolves a user query to one dataset: an exact id first, then a
// case-insensitive exact title, then a fuzzy title match that must be unique.
func (s *Store) Find(query string) (*Meta, error) {
	query = strings.TrimSpace(query)

	if meta, ok := s.index.Get(query).Get(); ok {
		return meta, nil
	}

	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	if meta, ok := lo.Find(metas, func(m *Meta) bool {
		return strings.EqualFold(m.Title, query)
	}); ok {
		return meta, nil
	}

	titles := lo.Map(metas, func(m *Meta, _ int) string { return m.Title })
	ranks := fuzzy.RankFindNormalizedFold(query, titles)

	switch len(ranks) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	case 1:
		return metas[ranks[0].OriginalIndex], nil
	}

	sort.Sort(ranks)
	candidates := lo.Map(ranks, func(r fuzzy.Rank, _ int) string { return r.Target })
	return nil, fmt.Errorf("%w: %q matches %s", ErrAmbiguous, query, strings.Join(candidates, ", "))
}

// Reindex rebuilds the index from the dataset files on disk.
func (s *Store) Reindex() (int, error) {
	files, err := afero.Glob(filesystem.API(), filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, err
	}

	if err := s.index.Clear(); err != nil {
		return 0, err
	}

	var count int
	for _, file := range files {
		id := strings.TrimSuffix(filepath.Base(file), ".json")
		d, err := s.Load(id)
		if err != nil {
			log.Warnf("skipping %s: %v", file, err)
			continue
		}

		if err := s.index.Set(d.ID, d.Meta()); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}
