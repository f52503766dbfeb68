// Package cache wraps gache into a keyed, thread-safe store backed by a single JSON file.
package cache

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/samber/mo"
)

type cacheData[K comparable, T any] struct {
	Entries map[K]T `json:"entries"`
}

// Keyed is a map persisted as one JSON file. Expired files read as empty.
type Keyed[K comparable, T any] struct {
	internal   *gache.Cache[*cacheData[K, T]]
	keyWrapper func(K) K
	mu         sync.RWMutex
}

// New creates a keyed cache at path. A zero lifetime never expires.
// keyWrapper normalizes keys before every access and may be nil.
func New[K comparable, T any](path string, lifetime time.Duration, keyWrapper func(K) K) *Keyed[K, T] {
	if keyWrapper == nil {
		keyWrapper = func(k K) K { return k }
	}

	return &Keyed[K, T]{
		internal: gache.New[*cacheData[K, T]](
			&gache.Options{
				Path:       path,
				Lifetime:   lifetime,
				FileSystem: &filesystem.GacheFs{},
			},
		),
		keyWrapper: keyWrapper,
	}
}

func (c *Keyed[K, T]) load() (*cacheData[K, T], error) {
	data, expired, err := c.internal.Get()
	if err != nil {
		return nil, err
	}

	if expired || data == nil || data.Entries == nil {
		return &cacheData[K, T]{Entries: make(map[K]T)}, nil
	}

	return data, nil
}

// Get returns the value stored under key.
func (c *Keyed[K, T]) Get(key K) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.load()
	if err != nil {
		return mo.None[T]()
	}

	if value, ok := data.Entries[c.keyWrapper(key)]; ok {
		return mo.Some(value)
	}

	return mo.None[T]()
}

// Set stores value under key and writes the file.
func (c *Keyed[K, T]) Set(key K, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.load()
	if err != nil {
		return err
	}

	data.Entries[c.keyWrapper(key)] = value
	return c.internal.Set(data)
}

// Update applies f to the current value under key, if any, and stores the result.
func (c *Keyed[K, T]) Update(key K, f func(mo.Option[T]) T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.load()
	if err != nil {
		return err
	}

	k := c.keyWrapper(key)
	current := mo.None[T]()
	if value, ok := data.Entries[k]; ok {
		current = mo.Some(value)
	}

	data.Entries[k] = f(current)
	return c.internal.Set(data)
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Keyed[K, T]) Delete(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.load()
	if err != nil {
		return err
	}

	k := c.keyWrapper(key)
	if _, ok := data.Entries[k]; !ok {
		return nil
	}

	delete(data.Entries, k)
	return c.internal.Set(data)
}

// All returns a copy of every entry.
func (c *Keyed[K, T]) All() (map[K]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.load()
	if err != nil {
		return nil, err
	}

	entries := make(map[K]T, len(data.Entries))
	for k, v := range data.Entries {
		entries[k] = v
	}

	return entries, nil
}

// Clear drops every entry.
func (c *Keyed[K, T]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.internal.Set(&cacheData[K, T]{Entries: make(map[K]T)})
}
