// Package app is the gateway's HTTP server: it derives a site identity from
// the request host, orchestrates manifest resolution, blob download and
// caching, and assembles the response — including live-reload injection and
// the background update-check endpoint.
package app

import (
	"context"
	"net/http"

	"gateway.nsyte.dev/app/config"
	"gateway.nsyte.dev/pkg/blobstore"
	"gateway.nsyte.dev/pkg/cache"
	"gateway.nsyte.dev/pkg/eventstore"
	"gateway.nsyte.dev/pkg/manifest"
	"gateway.nsyte.dev/pkg/relaypool"
	"gateway.nsyte.dev/pkg/watcher"
)

// Server wires together the resolver gateway's components behind a single
// http.Handler.
type Server struct {
	Config     *config.C
	Ctx        context.Context
	Pool       *relaypool.Pool
	Store      *eventstore.S
	Resolver   *manifest.Resolver
	Downloader *blobstore.Downloader
	Cache      *cache.Cache
	Watcher    *watcher.Watcher
	Profiles   *cache.ProfileCache

	mux *http.ServeMux
}

// New wires a Server from its component dependencies. Call Handler to obtain
// the http.Handler to serve.
func New(ctx context.Context, cfg *config.C) *Server {
	pool := relaypool.New()
	store := eventstore.New()
	c := cache.New(cfg.CacheDir)
	s := &Server{
		Config:     cfg,
		Ctx:        ctx,
		Pool:       pool,
		Store:      store,
		Resolver:   manifest.New(pool, store),
		Downloader: blobstore.New(blobstore.DefaultTimeout),
		Cache:      c,
		Profiles:   cache.NewProfileCache(),
	}
	s.Watcher = watcher.New(c, s.resolveManifest, nil)
	return s
}

// Handler returns the http.Handler for the gateway, registering all routes.
func (s *Server) Handler() http.Handler {
	if s.mux != nil {
		return s.mux
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/_nsyte/check-updates", s.handleCheckUpdates)
	mux.HandleFunc("/", s.handleSite)
	s.mux = mux
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}
