package watcher

import (
	"context"
	"testing"
	"time"

	"gateway.nsyte.dev/pkg/cache"
	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/kind"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestRefreshAdvancesCacheAndMarksChangedPaths(t *testing.T) {
	c := cache.New("")
	key := cache.SiteKey{Pubkey: "pk"}

	initial := &event.E{ID: "aa", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 1, Tags: event.Tags{
		{"path", "/index.html", "hash-a"},
	}}
	c.Apply(key, initial)

	updated := &event.E{ID: "bb", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 2, Tags: event.Tags{
		{"path", "/index.html", "hash-a-v2"},
	}}
	resolve := func(ctx context.Context, relays []string, pubkey, identifier string) *event.E {
		return updated
	}

	now := time.UnixMilli(5000)
	w := New(c, resolve, fixedClock(now))
	w.refresh(context.Background(), key, nil, "/index.html")

	snap := c.Snapshot(key)
	if snap.Manifest != updated {
		t.Errorf("expected cache to have advanced to the updated manifest, got %+v", snap.Manifest)
	}
	hasUpdate, ts := c.UpdatedSince(key, "/index.html", 0)
	if !hasUpdate || ts != now.UnixMilli() {
		t.Errorf("UpdatedSince = (%v, %d), want (true, %d)", hasUpdate, ts, now.UnixMilli())
	}
}

func TestRefreshMarksRequestPathWhenItsResolvedTargetChanged(t *testing.T) {
	c := cache.New("")
	key := cache.SiteKey{Pubkey: "pk"}

	initial := &event.E{ID: "aa", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 1, Tags: event.Tags{
		{"path", "/index.html", "hash-a"},
	}}
	c.Apply(key, initial)

	updated := &event.E{ID: "bb", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 2, Tags: event.Tags{
		{"path", "/index.html", "hash-a-v2"},
	}}
	resolve := func(ctx context.Context, relays []string, pubkey, identifier string) *event.E {
		return updated
	}

	now := time.UnixMilli(9000)
	w := New(c, resolve, fixedClock(now))
	// the live-reload poll for the root page uses "/", not the manifest path
	// "/index.html" that actually changed.
	w.refresh(context.Background(), key, nil, "/")

	hasUpdate, ts := c.UpdatedSince(key, "/", 0)
	if !hasUpdate || ts != now.UnixMilli() {
		t.Errorf("UpdatedSince(\"/\") = (%v, %d), want (true, %d)", hasUpdate, ts, now.UnixMilli())
	}
}

func TestTriggerNoOpWhenAlreadyWatching(t *testing.T) {
	c := cache.New("")
	key := cache.SiteKey{Pubkey: "pk"}
	if !c.SetWatching(key, true) {
		t.Fatal("expected to claim the watch slot")
	}

	called := false
	resolve := func(ctx context.Context, relays []string, pubkey, identifier string) *event.E {
		called = true
		return nil
	}
	w := New(c, resolve, nil)
	w.Trigger(context.Background(), key, nil, "/")

	if called {
		t.Error("Trigger should not start a refresh while the watch slot is already claimed")
	}
}

func TestRefreshSkipsNonNewerManifest(t *testing.T) {
	c := cache.New("")
	key := cache.SiteKey{Pubkey: "pk"}
	m := &event.E{ID: "aa", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 5, Tags: event.Tags{
		{"path", "/index.html", "hash-a"},
	}}
	c.Apply(key, m)

	resolve := func(ctx context.Context, relays []string, pubkey, identifier string) *event.E {
		return m // same manifest, not newer
	}
	w := New(c, resolve, fixedClock(time.UnixMilli(1)))
	w.refresh(context.Background(), key, nil, "/index.html")

	if hasUpdate, _ := c.UpdatedSince(key, "/index.html", 0); hasUpdate {
		t.Error("refresh should not mark any path updated when the manifest did not advance")
	}
}
