package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gateway.nsyte.dev/pkg/event"
)

// profileTTL bounds how long a resolved profile/relay-list/server-list trio
// is trusted before a request re-fetches it from relays.
const profileTTL = 10 * time.Minute

type profileEntry struct {
	profile    *event.E
	relayList  *event.E
	serverList *event.E
	fetchedAt  time.Time
}

// ProfileFetcher resolves a pubkey's profile/relay-list/server-list trio,
// e.g. manifest.Resolver.ResolveProfile bound to a relay union.
type ProfileFetcher func(ctx context.Context, pubkey string) (profile, relayList, serverList *event.E)

// ProfileCache holds the fallback profile/relay-list/server-list trio per
// pubkey, refreshed at most once per profileTTL. Concurrent misses for the
// same pubkey share one fetch via singleflight, the same coalescing
// discipline the blob tier uses.
type ProfileCache struct {
	mu      sync.Mutex
	entries map[string]profileEntry
	group   singleflight.Group
	now     func() time.Time
}

// NewProfileCache returns an empty profile cache.
func NewProfileCache() *ProfileCache {
	return &ProfileCache{entries: make(map[string]profileEntry), now: time.Now}
}

// Get returns the cached trio for pubkey if younger than profileTTL,
// otherwise calls fetch, caches the result, and returns it.
func (c *ProfileCache) Get(ctx context.Context, pubkey string, fetch ProfileFetcher) (profile, relayList, serverList *event.E) {
	c.mu.Lock()
	e, ok := c.entries[pubkey]
	c.mu.Unlock()
	if ok && c.nowFn().Sub(e.fetchedAt) < profileTTL {
		return e.profile, e.relayList, e.serverList
	}

	v, _, _ := c.group.Do(pubkey, func() (any, error) {
		p, rl, sl := fetch(ctx, pubkey)
		entry := profileEntry{profile: p, relayList: rl, serverList: sl, fetchedAt: c.nowFn()}
		c.mu.Lock()
		c.entries[pubkey] = entry
		c.mu.Unlock()
		return entry, nil
	})
	entry := v.(profileEntry)
	return entry.profile, entry.relayList, entry.serverList
}

func (c *ProfileCache) nowFn() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
