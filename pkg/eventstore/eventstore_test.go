package eventstore

import (
	"testing"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/kind"
)

func TestPutIgnoresNonReplaceableKinds(t *testing.T) {
	s := New()
	ev := &event.E{ID: "aa", PubKey: "pk", Kind: 1, CreatedAt: 1}
	if s.Put(ev) {
		t.Error("Put should reject a non-replaceable kind")
	}
	if got := s.GetReplaceable(1, "pk", ""); got != nil {
		t.Errorf("GetReplaceable = %v, want nil", got)
	}
}

func TestPutKeepsNewestRootManifest(t *testing.T) {
	s := New()
	older := &event.E{ID: "aa", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 100}
	newer := &event.E{ID: "bb", PubKey: "pk", Kind: kind.RootSite, CreatedAt: 200}

	if !s.Put(older) {
		t.Error("first event for a slot should always win")
	}
	if !s.Put(newer) {
		t.Error("strictly newer event should win")
	}
	if s.Put(older) {
		t.Error("older event should not displace the newer winner")
	}
	if got := s.GetReplaceable(kind.RootSite, "pk", ""); got != newer {
		t.Errorf("GetReplaceable = %v, want %v", got, newer)
	}
}

func TestPutSeparatesByIdentifier(t *testing.T) {
	s := New()
	a := &event.E{ID: "aa", PubKey: "pk", Kind: kind.NamedSite, CreatedAt: 1, Tags: event.Tags{{"d", "site-a"}}}
	b := &event.E{ID: "bb", PubKey: "pk", Kind: kind.NamedSite, CreatedAt: 1, Tags: event.Tags{{"d", "site-b"}}}
	s.Put(a)
	s.Put(b)
	if s.GetReplaceable(kind.NamedSite, "pk", "site-a") != a {
		t.Error("site-a slot should hold a")
	}
	if s.GetReplaceable(kind.NamedSite, "pk", "site-b") != b {
		t.Error("site-b slot should hold b")
	}
}

func TestPutSeparatesByPubkey(t *testing.T) {
	s := New()
	a := &event.E{ID: "aa", PubKey: "pk1", Kind: kind.RootSite, CreatedAt: 1}
	b := &event.E{ID: "bb", PubKey: "pk2", Kind: kind.RootSite, CreatedAt: 1}
	s.Put(a)
	s.Put(b)
	if s.GetReplaceable(kind.RootSite, "pk1", "") != a {
		t.Error("pk1 slot should hold a")
	}
	if s.GetReplaceable(kind.RootSite, "pk2", "") != b {
		t.Error("pk2 slot should hold b")
	}
}
