// Package manifest resolves a site's current manifest event, and its
// fallback profile/relay-list/server-list events, against a relay union.
package manifest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"lol.mleku.dev/log"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/eventstore"
	"gateway.nsyte.dev/pkg/filter"
	"gateway.nsyte.dev/pkg/identity"
	"gateway.nsyte.dev/pkg/kind"
	"gateway.nsyte.dev/pkg/relaypool"
)

// File is one entry of a manifest's path -> content-hash map.
type File struct {
	Path   string
	SHA256 string
}

// Resolver fetches and folds manifest events into an event store.
type Resolver struct {
	pool  *relaypool.Pool
	store *eventstore.S
}

// New returns a manifest resolver backed by pool and store.
func New(pool *relaypool.Pool, store *eventstore.S) *Resolver {
	return &Resolver{pool: pool, store: store}
}

// Resolve performs a single manifest listing request against relays for
// (pubkey, identifier), folds every delivered event into the store, and
// returns the event store's eventual winner. identifier == "" means root
// site. Returns nil if no manifest event exists for the site.
func (r *Resolver) Resolve(ctx context.Context, relays []string, pubkey, identifier string) *event.E {
	k := kind.RootSite
	if identifier != "" {
		k = kind.NamedSite
	}
	f := filter.Manifest(pubkey, identifier)
	return r.fetchReplaceable(ctx, relays, f, k, pubkey, identifier, relaypool.DefaultManifestRequestTimeout)
}

// ResolveProfile fetches a pubkey's profile, NIP-65 relay list, and Blossom
// server list in parallel — the three fallback sources consulted only when
// a manifest itself endorses no servers, or a relay union needs widening.
// Any of the three may come back nil if no such event exists.
func (r *Resolver) ResolveProfile(ctx context.Context, relays []string, pubkey string) (profile, relayList, serverList *event.E) {
	var g errgroup.Group
	g.Go(func() error {
		profile = r.fetchReplaceable(ctx, relays, filter.Profile(pubkey), kind.Profile, pubkey, "", relaypool.DefaultRequestTimeout)
		return nil
	})
	g.Go(func() error {
		relayList = r.fetchReplaceable(ctx, relays, filter.RelayList(pubkey), kind.RelayListMetadata, pubkey, "", relaypool.DefaultRequestTimeout)
		return nil
	})
	g.Go(func() error {
		serverList = r.fetchReplaceable(ctx, relays, filter.BlobServerList(pubkey), kind.BlobServerList, pubkey, "", relaypool.DefaultRequestTimeout)
		return nil
	})
	_ = g.Wait()
	return
}

// fetchReplaceable runs one listing request against relays, folding only
// events whose signature verifies into the store, and returns the store's
// winner for (k, pubkey, identifier). An event that fails verification is
// treated as absent rather than folded in — a relay cannot forge what the
// gateway serves by handing back a tampered or unsigned event.
func (r *Resolver) fetchReplaceable(ctx context.Context, relays []string, f filter.F, k kind.T, pubkey, identifier string, timeout time.Duration) *event.E {
	for ev := range r.pool.Request(ctx, relays, f, timeout) {
		ok, err := identity.Verify(ev)
		if err != nil || !ok {
			log.D.F("manifest: dropping unverifiable event %s from %s: ok=%v err=%v", ev.ID, ev.PubKey, ok, err)
			continue
		}
		r.store.Put(ev)
	}
	return r.store.GetReplaceable(k, pubkey, identifier)
}

// Files derives the ordered set of path/hash pairs declared by a manifest's
// "path" tags.
func Files(m *event.E) []File {
	if m == nil {
		return nil
	}
	var out []File
	for _, t := range m.Tags.GetAll("path") {
		if len(t) < 3 {
			continue
		}
		out = append(out, File{Path: t[1], SHA256: t[2]})
	}
	return out
}

// Servers derives the blob-server URL list endorsed by an event's "server"
// tags, in declaration order. Works for both a site manifest's own endorsed
// servers and a kind-10063 Blossom server list event. Per spec a manifest's
// own servers MUST be tried before any fallback list.
func Servers(m *event.E) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, t := range m.Tags.GetAll("server") {
		if v := t.Value(); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// RelayURLs derives the relay URL list from a kind-10002 NIP-65 relay list
// event's "r" tags, skipping any marked write-only — the gateway only ever
// reads from relays, so a publish-only endorsement is not a candidate.
func RelayURLs(ev *event.E) []string {
	if ev == nil {
		return nil
	}
	var out []string
	for _, t := range ev.Tags.GetAll("r") {
		url := t.Value()
		if url == "" {
			continue
		}
		if len(t) >= 3 && t[2] == "write" {
			continue
		}
		out = append(out, url)
	}
	return out
}
