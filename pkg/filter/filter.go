// Package filter is the query shape sent to relays in a REQ envelope: a set
// of kinds, authors and an optional "d" tag constraint, plus a limit.
package filter

import (
	"encoding/json"

	"gateway.nsyte.dev/pkg/kind"
)

// F is a nostr filter. Fields are omitted from the wire form when empty so a
// relay sees only the constraints the caller actually wants.
type F struct {
	Kinds   []kind.T `json:"kinds,omitempty"`
	Authors []string `json:"authors,omitempty"`
	D       []string `json:"#d,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// MarshalJSON renders the filter, dropping Limit when zero (the zero value
// means "unspecified", not "zero events").
func (f F) MarshalJSON() ([]byte, error) {
	type alias struct {
		Kinds   []kind.T `json:"kinds,omitempty"`
		Authors []string `json:"authors,omitempty"`
		D       []string `json:"#d,omitempty"`
		Limit   *int     `json:"limit,omitempty"`
	}
	a := alias{Kinds: f.Kinds, Authors: f.Authors, D: f.D}
	if f.Limit > 0 {
		a.Limit = &f.Limit
	}
	return json.Marshal(a)
}

// Manifest builds the filter used to resolve a site's manifest: the two
// manifest kinds, the site's pubkey, and the identifier constraint when the
// site is a named (non-root) site.
func Manifest(pubkey string, identifier string) F {
	f := F{
		Kinds:   []kind.T{kind.RootSite, kind.NamedSite},
		Authors: []string{pubkey},
	}
	if identifier != "" {
		f.D = []string{identifier}
	}
	return f
}

// Profile builds the filter used to resolve a pubkey's kind-0 profile event.
func Profile(pubkey string) F {
	return F{Kinds: []kind.T{kind.Profile}, Authors: []string{pubkey}, Limit: 1}
}

// RelayList builds the filter used to resolve a pubkey's NIP-65 relay list,
// consulted only as a fallback source when the configured relay set is empty.
func RelayList(pubkey string) F {
	return F{Kinds: []kind.T{kind.RelayListMetadata}, Authors: []string{pubkey}, Limit: 1}
}

// BlobServerList builds the filter used to resolve a pubkey's Blossom
// server list, consulted only as a fallback source when a manifest endorses
// no servers.
func BlobServerList(pubkey string) F {
	return F{Kinds: []kind.T{kind.BlobServerList}, Authors: []string{pubkey}, Limit: 1}
}
