// Package cache implements the gateway's two-tier (memory + disk) cache for
// manifests and blobs, the per-site staleness bookkeeping that drives live
// reload, and the singleflight guarantee that concurrent requests for an
// uncached site share one upstream fetch.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/manifest"
)

// SiteKey identifies a site: a pubkey and an optional named-site identifier
// (empty for the root site).
type SiteKey struct {
	Pubkey     string
	Identifier string
}

// siteState is the single logical record describing a site's current view:
// its manifest event, the derived path->hash map, per-path "last changed"
// timestamps, and the two transient bits the loading page and watcher read.
// Every field is read and written together under mu — the invariant that a
// reader sees Files and EventTimestamps from the same manifest generation
// depends on never updating one without the other while holding the lock.
type siteState struct {
	mu sync.RWMutex

	manifest              *event.E
	files                 []manifest.File
	eventTimestamps       map[string]int64 // path -> created_at of the manifest that last touched it
	loading               bool
	attempted             bool // a resolution attempt has completed, regardless of outcome
	manifestFoundButEmpty bool // a manifest EVENT was found, but it declared zero path tags
	watching              bool
}

// Snapshot is a consistent, immutable view of a site's current state.
type Snapshot struct {
	Manifest              *event.E
	Files                 []manifest.File
	EventTimestamps       map[string]int64
	Loading               bool
	ManifestFoundButEmpty bool
	Cached                bool
}

func (s *siteState) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Manifest:              s.manifest,
		Files:                 s.files,
		EventTimestamps:       s.eventTimestamps,
		Loading:               s.loading,
		ManifestFoundButEmpty: s.manifestFoundButEmpty,
		// Cached means "a resolution attempt has completed", so a genuinely
		// nonexistent site stops re-triggering startLoad on every request
		// just like a populated or found-but-empty one does; it does not by
		// itself mean a manifest event was ever found.
		Cached: s.manifest != nil || s.attempted,
	}
}

// Cache is the gateway's tiered cache. Create with New.
type Cache struct {
	dir string // disk cache root; "" disables the disk tier

	mu    sync.Mutex
	sites map[SiteKey]*siteState

	blobLoad singleflight.Group

	blobMu sync.Mutex
	blobs  map[blobKey][]byte

	freshInit sync.Once
	fresh     *freshness
}

type blobKey struct {
	site    SiteKey
	hash    string
	decoded bool
}

// New returns a cache rooted at dir. dir == "" disables the disk tier; the
// memory tier is always active.
func New(dir string) *Cache {
	return &Cache{
		dir:   dir,
		sites: make(map[SiteKey]*siteState),
		blobs: make(map[blobKey][]byte),
	}
}

func (c *Cache) site(key SiteKey) *siteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sites[key]
	if !ok {
		s = &siteState{}
		c.sites[key] = s
	}
	return s
}

// Snapshot returns a consistent view of a site's current cache state.
func (c *Cache) Snapshot(key SiteKey) Snapshot {
	return c.site(key).snapshot()
}

// SetWatching with on == true atomically claims key's background-watcher
// slot, returning false if a watcher already holds it; exactly one caller
// across concurrent attempts observes claimed == true. With on == false it
// releases the slot and returns true.
func (c *Cache) SetWatching(key SiteKey, on bool) (claimed bool) {
	s := c.site(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		if s.watching {
			return false
		}
		s.watching = true
		return true
	}
	s.watching = false
	return true
}
