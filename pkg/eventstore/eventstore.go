// Package eventstore is the in-process replaceable-event index the relay
// pool folds delivered events into. It replaces the teacher's badger-backed
// database package: the gateway never persists relay events — only resolved
// manifests and blobs survive a restart (pkg/cache), so a plain map under a
// mutex is the whole of this component.
package eventstore

import (
	"sync"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/kind"
)

// key identifies a replaceable event's slot: (kind, pubkey, d). d is empty
// for plain replaceable events and for root-site manifests.
type key struct {
	kind   kind.T
	pubkey string
	d      string
}

// S is a concurrent map (kind, pubkey, d) -> newest event observed.
type S struct {
	mu     sync.RWMutex
	latest map[key]*event.E
}

// New returns an empty event store.
func New() *S {
	return &S{latest: make(map[key]*event.E)}
}

// Put folds ev into the store, keeping it only if it is Newer than whatever
// is already indexed for ev's (kind, pubkey, d). Kind-0 profiles are indexed
// the same way as replaceable kinds. Returns true only if ev replaced the
// previous winner or filled an empty slot.
func (s *S) Put(ev *event.E) bool {
	if ev.Kind != kind.Profile && !kind.IsReplaceable(ev.Kind) && !kind.IsParameterizedReplaceable(ev.Kind) {
		return false
	}
	k := key{kind: ev.Kind, pubkey: ev.PubKey, d: ev.Identifier()}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.latest[k]
	if ev.Newer(cur) {
		s.latest[k] = ev
		return true
	}
	return false
}

// GetReplaceable returns the current winner for (k, pubkey, d), or nil.
func (s *S) GetReplaceable(k kind.T, pubkey, d string) *event.E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest[key{kind: k, pubkey: pubkey, d: d}]
}
