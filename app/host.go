package app

import (
	"fmt"
	"regexp"
	"strings"

	"gateway.nsyte.dev/pkg/cache"
	"gateway.nsyte.dev/pkg/identity"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// isBareHost reports whether host (with any port stripped) is one of the
// conventional "no site, just the gateway itself" hostnames.
func isBareHost(host string) bool {
	switch hostOnly(host) {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return true
	}
	return false
}

func hostOnly(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}

// parseHost derives a site identity from a request Host header. The first
// label beginning with "npub" names the root site of that pubkey; with three
// or more labels, a leading identifier label followed by an npub label names
// a named site.
func parseHost(host string) (cache.SiteKey, error) {
	labels := strings.Split(hostOnly(host), ".")
	if len(labels) == 0 || labels[0] == "" {
		return cache.SiteKey{}, fmt.Errorf("app: empty host")
	}

	if identity.LooksLikeNpub(labels[0]) {
		pubkey, err := identity.DecodeNpub(labels[0])
		if err != nil {
			return cache.SiteKey{}, fmt.Errorf("app: invalid npub %q: %w", labels[0], err)
		}
		return cache.SiteKey{Pubkey: pubkey}, nil
	}

	if len(labels) >= 3 && identifierPattern.MatchString(labels[0]) && identity.LooksLikeNpub(labels[1]) {
		pubkey, err := identity.DecodeNpub(labels[1])
		if err != nil {
			return cache.SiteKey{}, fmt.Errorf("app: invalid npub %q: %w", labels[1], err)
		}
		return cache.SiteKey{Pubkey: pubkey, Identifier: labels[0]}, nil
	}

	return cache.SiteKey{}, fmt.Errorf("app: host %q does not name a site", host)
}
