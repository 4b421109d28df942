package cache

import (
	"context"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/manifest"
)

// Fetcher resolves a site's current manifest, e.g. manifest.Resolver.Resolve
// bound to a particular relay union.
type Fetcher func(ctx context.Context) *event.E

// TryClaimLoad atomically marks key as loading if it is not already, and
// reports whether this call made the claim. Exactly one of any number of
// concurrent callers racing on an uncached site claims the load; the rest
// get false and should simply render the loading/404 response while the
// claimant's goroutine runs Load in the background. This is the singleflight
// guarantee the spec requires: at most one manifest-resolution task started
// per site per miss episode.
func (c *Cache) TryClaimLoad(key SiteKey) bool {
	s := c.site(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// Load resolves key's manifest via fetch, applies it, persists it to disk,
// and clears the loading flag. Call only after TryClaimLoad returns true.
func (c *Cache) Load(ctx context.Context, key SiteKey, fetch Fetcher) Snapshot {
	s := c.site(key)

	m := fetch(ctx)
	c.Apply(key, m)

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	c.persistManifest(key)
	return s.snapshot()
}

// Apply installs m as key's current manifest, replacing Files and
// EventTimestamps atomically (readers under the RLock see both or neither).
// Marks the site as having had a resolution attempt either way, distinct
// from manifestFoundButEmpty: m == nil means no manifest event exists for
// the site at all, while a manifest with zero path tags is a real event
// that happens to declare no files — only the latter counts as found but
// empty.
func (c *Cache) Apply(key SiteKey, m *event.E) {
	s := c.site(key)
	files := manifest.Files(m)

	s.mu.Lock()
	defer s.mu.Unlock()

	if m == nil {
		s.attempted = true
		return
	}
	if !m.Newer(s.manifest) {
		s.attempted = true
		return
	}

	ts := make(map[string]int64, len(files))
	for _, f := range files {
		ts[f.Path] = m.CreatedAt
	}
	s.manifest = m
	s.files = files
	s.eventTimestamps = ts
	s.manifestFoundButEmpty = len(files) == 0
	s.attempted = true
}

// Diff compares a site's previously cached file set to a newly resolved one,
// returning the set of paths added, removed, or changed. A transition
// between empty and non-empty is reported as every path of whichever side is
// non-empty, so both the loading page and already-open pages reload.
func Diff(oldFiles, newFiles []manifest.File) (changed []string) {
	oldByPath := make(map[string]string, len(oldFiles))
	for _, f := range oldFiles {
		oldByPath[f.Path] = f.SHA256
	}
	newByPath := make(map[string]string, len(newFiles))
	for _, f := range newFiles {
		newByPath[f.Path] = f.SHA256
	}

	if len(oldFiles) == 0 && len(newFiles) > 0 {
		for p := range newByPath {
			changed = append(changed, p)
		}
		return
	}
	if len(oldFiles) > 0 && len(newFiles) == 0 {
		for p := range oldByPath {
			changed = append(changed, p)
		}
		return
	}

	for p, h := range newByPath {
		if oh, ok := oldByPath[p]; !ok || oh != h {
			changed = append(changed, p)
		}
	}
	for p := range oldByPath {
		if _, ok := newByPath[p]; !ok {
			changed = append(changed, p)
		}
	}
	return
}
