// Package watcher runs the background manifest refresh that drives live
// reload: after a successful response from a populated site cache, it
// re-resolves the manifest off the request path, diffs the result against
// what was cached, and advances the per-path freshness timestamps the
// check-updates endpoint reads.
package watcher

import (
	"context"
	"time"

	"lol.mleku.dev/log"

	"gateway.nsyte.dev/pkg/cache"
	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/manifest"
)

// Clock abstracts wall-clock time so callers can stamp freshness updates
// deterministically in tests.
type Clock func() time.Time

// Resolve performs one manifest listing against a relay union, returning nil
// if nothing was found — this is manifest.Resolver.Resolve, parameterised so
// Watcher doesn't depend on the relay pool's concrete concurrency shape.
type Resolve func(ctx context.Context, relays []string, pubkey, identifier string) *event.E

// Watcher drives background refresh for sites whose cache is already
// populated. At most one watch runs per site at a time.
type Watcher struct {
	cache   *cache.Cache
	resolve Resolve
	now     Clock
}

// New returns a watcher over cache using resolve to fetch manifests. now
// defaults to time.Now when nil.
func New(c *cache.Cache, resolve Resolve, now Clock) *Watcher {
	if now == nil {
		now = time.Now
	}
	return &Watcher{cache: c, resolve: resolve, now: now}
}

// Trigger starts a background refresh of key against relays unless one is
// already running, in which case this call is a no-op: the caller's request
// will simply observe whatever the in-flight watch concludes. requestPath,
// if non-empty, is the path the triggering request was for; if its resolved
// manifest target is among the paths a refresh changes, requestPath itself
// is also marked updated, since that's the key the client's live-reload
// poll actually uses.
func (w *Watcher) Trigger(ctx context.Context, key cache.SiteKey, relays []string, requestPath string) {
	if !w.cache.SetWatching(key, true) {
		return
	}
	go func() {
		defer w.cache.SetWatching(key, false)
		w.refresh(ctx, key, relays, requestPath)
	}()
}

func (w *Watcher) refresh(ctx context.Context, key cache.SiteKey, relays []string, requestPath string) {
	before := w.cache.Snapshot(key)

	m := w.resolve(ctx, relays, key.Pubkey, key.Identifier)
	if m == nil {
		log.D.F("watcher: %s/%s refresh returned nothing", key.Pubkey, key.Identifier)
		return
	}
	if before.Manifest != nil && !m.Newer(before.Manifest) {
		return
	}

	newFiles := manifest.Files(m)
	changed := cache.Diff(before.Files, newFiles)
	w.cache.Apply(key, m)

	if len(changed) == 0 {
		return
	}
	nowMs := w.now().UnixMilli()
	for _, p := range changed {
		w.cache.MarkUpdated(key, p, nowMs)
	}
	if requestPath != "" && requestPathAffected(changed, requestPath) {
		w.cache.MarkUpdated(key, requestPath, nowMs)
	}
	log.I.F(
		"watcher: %s/%s advanced, %d path(s) changed (triggered by %s)",
		key.Pubkey, key.Identifier, len(changed), requestPath,
	)
}

// requestPathAffected reports whether requestPath's resolved manifest target
// — any of its logical candidates, plain or compressed — is among changed.
func requestPathAffected(changed []string, requestPath string) bool {
	set := make(map[string]struct{}, len(changed))
	for _, p := range changed {
		set[p] = struct{}{}
	}
	for _, logical := range manifest.CandidatePaths(requestPath) {
		for _, p := range [...]string{logical, logical + ".br", logical + ".gz"} {
			if _, ok := set[p]; ok {
				return true
			}
		}
	}
	return false
}
