// Package event is the nostr signed-event datatype used throughout the
// gateway: manifests, profiles, relay lists and blob-server lists are all
// instances of event.E distinguished only by Kind and Tags.
package event

import (
	"gateway.nsyte.dev/pkg/kind"
)

// Tag is a single nostr tag: a list of strings, conventionally
// [key, value, ...extra].
type Tag []string

// Key returns the tag's first element, or "" if the tag is empty.
func (t Tag) Key() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the tag's second element, or "" if it has fewer than two.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Tags is the ordered tag list of an event.
type Tags []Tag

// GetFirst returns the first tag whose key matches, or nil.
func (tt Tags) GetFirst(key string) Tag {
	for _, t := range tt {
		if t.Key() == key {
			return t
		}
	}
	return nil
}

// GetAll returns every tag whose key matches, preserving order.
func (tt Tags) GetAll(key string) []Tag {
	var out []Tag
	for _, t := range tt {
		if t.Key() == key {
			out = append(out, t)
		}
	}
	return out
}

// E is a signed nostr event, the unit of exchange with relays.
type E struct {
	ID        string   `json:"id"`
	PubKey    string   `json:"pubkey"`
	CreatedAt int64    `json:"created_at"`
	Kind      kind.T   `json:"kind"`
	Tags      Tags     `json:"tags"`
	Content   string   `json:"content"`
	Sig       string   `json:"sig"`
}

// Identifier returns the value of the event's "d" tag, or "" if absent —
// the empty identifier denotes a root (non-parameterized) replaceable event.
func (e *E) Identifier() string {
	if d := e.Tags.GetFirst("d"); d != nil {
		return d.Value()
	}
	return ""
}

// Newer reports whether e should replace other under NIP-01 replaceable
// semantics: larger created_at wins, ties broken by larger id
// (lexicographically, as written, never as a numeric comparison).
func (e *E) Newer(other *E) bool {
	if other == nil {
		return true
	}
	if e.CreatedAt != other.CreatedAt {
		return e.CreatedAt > other.CreatedAt
	}
	return e.ID > other.ID
}
