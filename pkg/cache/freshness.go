package cache

import "sync"

// pathKey identifies one path of one site for the live-reload freshness
// signal — deliberately distinct from siteState.eventTimestamps, which
// records a manifest's (untrusted) publisher-supplied created_at for cache
// staleness. This map records this process's own wall-clock observation
// time, which is what the check-updates endpoint's "since" parameter (a
// client-supplied load timestamp) must be compared against.
type pathKey struct {
	site SiteKey
	path string
}

// freshness tracks, per (site, path), the last wall-clock millisecond at
// which this process observed a manifest change affecting that path.
// Monotonic non-decreasing per key, per the concurrency model.
type freshness struct {
	mu sync.RWMutex
	ts map[pathKey]int64
}

func newFreshness() *freshness {
	return &freshness{ts: make(map[pathKey]int64)}
}

// mark records nowMs as the update time for (site, path) if it advances the
// existing value.
func (f *freshness) mark(site SiteKey, path string, nowMs int64) {
	k := pathKey{site: site, path: path}
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.ts[k]; !ok || nowMs > cur {
		f.ts[k] = nowMs
	}
}

// since returns the last recorded update time for (site, path), or 0 if
// none was ever recorded (a 0 never exceeds a non-negative sinceMs, so it
// reads as "no update").
func (f *freshness) since(site SiteKey, path string) int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ts[pathKey{site: site, path: path}]
}

// MarkUpdated records that path changed for site at nowMs (milliseconds
// since epoch). The caller supplies the clock reading so this package stays
// trivially testable against fixed timestamps.
func (c *Cache) MarkUpdated(key SiteKey, path string, nowMs int64) {
	c.freshnessOnce()
	c.fresh.mark(key, path, nowMs)
}

// UpdatedSince reports whether path has changed for key since sinceMs, and
// the timestamp of its last recorded change.
func (c *Cache) UpdatedSince(key SiteKey, path string, sinceMs int64) (hasUpdate bool, timestamp int64) {
	c.freshnessOnce()
	ts := c.fresh.since(key, path)
	return ts > sinceMs, ts
}

func (c *Cache) freshnessOnce() {
	c.freshInit.Do(func() { c.fresh = newFreshness() })
}
