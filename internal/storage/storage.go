// Package storage caches loaded reference maps for the HTTP service.
package storage

import (
	"context"
	"sync"

	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
	"github.com/lehigh-university-libraries/fieldfix/internal/reference"
)

// entry is one vocabulary's load. ready is closed once ref or err is set.
type entry struct {
	ready chan struct{}
	ref   linker.ReferenceMap
	err   error
}

func (e *entry) loaded() (linker.ReferenceMap, bool) {
	select {
	case <-e.ready:
		return e.ref, e.err == nil
	default:
		return nil, false
	}
}

// ReferenceCache loads each vocabulary at most once at a time. The map
// lock is never held across a load, so a slow vocabulary does not block
// the others.
type ReferenceCache struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

func New() *ReferenceCache {
	return &ReferenceCache{
		entries: make(map[string]*entry),
	}
}

// Get returns a fully loaded map without waiting on loads in progress.
func (c *ReferenceCache) Get(vocabulary string) (linker.ReferenceMap, bool) {
	c.mu.RLock()
	e, exists := c.entries[vocabulary]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}
	return e.loaded()
}

// GetOrLoad returns the cached map for v, loading it from provider on a miss.
// Concurrent callers for the same vocabulary share one load. Failed loads are
// not cached.
func (c *ReferenceCache) GetOrLoad(ctx context.Context, provider reference.Provider, v reference.Vocabulary) (linker.ReferenceMap, error) {
	c.mu.Lock()
	e, exists := c.entries[v.Name]
	if !exists {
		e = &entry{ready: make(chan struct{})}
		c.entries[v.Name] = e
	}
	c.mu.Unlock()

	if exists {
		select {
		case <-e.ready:
			return e.ref, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.ref, e.err = provider.LoadReferenceMap(ctx, v)
	close(e.ready)
	if e.err != nil {
		c.mu.Lock()
		if c.entries[v.Name] == e {
			delete(c.entries, v.Name)
		}
		c.mu.Unlock()
	}
	return e.ref, e.err
}

// Sizes returns the number of keys per loaded vocabulary.
func (c *ReferenceCache) Sizes() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int, len(c.entries))
	for k, e := range c.entries {
		if ref, ok := e.loaded(); ok {
			result[k] = len(ref)
		}
	}
	return result
}

// Delete drops a vocabulary so the next request reloads it.
func (c *ReferenceCache) Delete(vocabulary string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.entries[vocabulary]
	delete(c.entries, vocabulary)
	return exists
}
