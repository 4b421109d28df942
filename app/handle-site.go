package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"lol.mleku.dev/log"

	"gateway.nsyte.dev/pkg/cache"
	"gateway.nsyte.dev/pkg/content"
	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/identity"
	"gateway.nsyte.dev/pkg/manifest"
)

func acceptsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

// relayUnion returns the relay set manifest resolution should use: the
// configured file relays, widened with the default fallback set when
// AllowFallbackRelays is set and the primary set is empty.
func (s *Server) relayUnion() []string {
	relays := s.Config.FileRelays
	if len(relays) == 0 && s.Config.AllowFallbackRelays {
		relays = s.Config.DefaultFileRelays
	}
	return relays
}

// profileRelays is the relay set consulted for the profile/relay-list/
// server-list fallback lookups, separate from relayUnion because a site's
// own pubkey may publish these to relays other than the ones serving its
// manifest.
func (s *Server) profileRelays() []string {
	if len(s.Config.ProfileRelays) > 0 {
		return s.Config.ProfileRelays
	}
	return s.relayUnion()
}

// profileTrio fetches (or returns the cached) profile/relay-list/server-list
// trio for pubkey, consulted as fallback sources per spec when a manifest
// endorses no servers, or the configured relay set needs widening.
func (s *Server) profileTrio(ctx context.Context, pubkey string) (relayList, serverList *event.E) {
	if s.Profiles == nil {
		return nil, nil
	}
	_, relayList, serverList = s.Profiles.Get(ctx, pubkey, func(ctx context.Context, pubkey string) (*event.E, *event.E, *event.E) {
		return s.Resolver.ResolveProfile(ctx, s.profileRelays(), pubkey)
	})
	return relayList, serverList
}

// relayUnionFor widens relayUnion() with the site pubkey's endorsed NIP-65
// relay list when AllowFallbackRelays is set and the primary set is empty —
// the same widening policy relayUnion applies to DefaultFileRelays, tried
// first since it requires no network round trip.
func (s *Server) relayUnionFor(ctx context.Context, pubkey string) []string {
	relays := s.relayUnion()
	if len(relays) > 0 || !s.Config.AllowFallbackRelays {
		return relays
	}
	relayList, _ := s.profileTrio(ctx, pubkey)
	return manifest.RelayURLs(relayList)
}

func (s *Server) resolveManifest(ctx context.Context, relays []string, pubkey, identifier string) *event.E {
	return s.Resolver.Resolve(ctx, relays, pubkey, identifier)
}

func (s *Server) fetchFn(key cache.SiteKey) cache.Fetcher {
	return func(ctx context.Context) *event.E {
		return s.resolveManifest(ctx, s.relayUnionFor(ctx, key.Pubkey), key.Pubkey, key.Identifier)
	}
}

// startLoad claims and runs a background manifest load for key if one is
// not already in flight; the singleflight property holds at the TryClaimLoad
// boundary, not here.
func (s *Server) startLoad(key cache.SiteKey) {
	if !s.Cache.TryClaimLoad(key) {
		return
	}
	go s.Cache.Load(s.Ctx, key, s.fetchFn(key))
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if isBareHost(r.Host) {
		s.redirectToTarget(w, r)
		return
	}

	key, err := parseHost(r.Host)
	if err != nil {
		log.D.F("app: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	snap := s.Cache.Snapshot(key)
	if !snap.Cached {
		s.startLoad(key)
		servePendingPage(w, acceptsHTML(r))
		return
	}

	accept := content.ParseAcceptEncoding(r.Header.Get("Accept-Encoding"))
	res, found := resolvePath(snap.Files, r.URL.Path, accept)
	if !found {
		if snap.ManifestFoundButEmpty {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = fmt.Fprint(w, "this site has no files")
			s.watchIfPopulated(key, r.URL.Path)
			return
		}
		serveBuiltinNotFound(w, acceptsHTML(r))
		s.watchIfPopulated(key, r.URL.Path)
		return
	}

	servers := s.serverListFor(r.Context(), key.Pubkey, snap)
	body, err := s.Cache.Resolve(r.Context(), key, res.SHA256, res.Variant, servers, s.Downloader)
	// A compressed variant that fails to download or decompress is dropped
	// from the accepted encodings and the next candidate is resolved instead.
	for err != nil && res.Variant != content.Plain {
		log.D.F("app: variant of %s failed, trying next candidate: %v", res.Path, err)
		if res.Variant == content.Brotli {
			accept.Brotli = false
		} else {
			accept.Gzip = false
		}
		next, ok := resolvePath(snap.Files, r.URL.Path, accept)
		if !ok {
			break
		}
		res = next
		body, err = s.Cache.Resolve(r.Context(), key, res.SHA256, res.Variant, servers, s.Downloader)
	}
	if err != nil {
		log.W.F("app: resolving %s for %s/%s: %v", res.Path, key.Pubkey, key.Identifier, err)
		http.Error(w, fmt.Sprintf("upstream unavailable: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeResponse(w, r, res, body)
	s.watchIfPopulated(key, r.URL.Path)
}

func (s *Server) watchIfPopulated(key cache.SiteKey, requestPath string) {
	if s.Watcher == nil {
		return
	}
	s.Watcher.Trigger(s.Ctx, key, s.relayUnionFor(s.Ctx, key.Pubkey), requestPath)
}

// serverListFor returns the blob servers to try for pubkey's site, in
// priority order: the manifest's own endorsed servers first, then pubkey's
// endorsed kind-10063 Blossom server list, then the configured fallback
// list — the last two consulted only when the manifest endorses none and
// fallback servers are allowed.
func (s *Server) serverListFor(ctx context.Context, pubkey string, snap cache.Snapshot) []string {
	if endorsed := manifest.Servers(snap.Manifest); len(endorsed) > 0 {
		return endorsed
	}
	if !s.Config.AllowFallbackServers {
		return nil
	}
	_, serverList := s.profileTrio(ctx, pubkey)
	if endorsed := manifest.Servers(serverList); len(endorsed) > 0 {
		return endorsed
	}
	return s.Config.Servers
}

func (s *Server) redirectToTarget(w http.ResponseWriter, r *http.Request) {
	if s.Config.TargetPubkey == "" {
		http.Error(w, "no default site configured", http.StatusNotFound)
		return
	}
	npub, err := identity.EncodeNpub(s.Config.TargetPubkey)
	if err != nil {
		http.Error(w, "invalid default site", http.StatusInternalServerError)
		return
	}
	host := npub + hostSuffix(r.Host)
	if s.Config.TargetIdentifier != "" {
		host = s.Config.TargetIdentifier + "." + host
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.Redirect(w, r, "//"+host+"/", http.StatusFound)
}

// hostSuffix returns the ":port" portion of host, the convention both bare
// localhost and the resolved npub host share so a redirect preserves it.
func hostSuffix(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[i:]
	}
	return ""
}
