package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lol.mleku.dev/log"
)

type checkUpdatesResponse struct {
	HasUpdate bool  `json:"hasUpdate"`
	Timestamp int64 `json:"timestamp"`
}

// handleCheckUpdates answers the live-reload poll: has path changed for this
// site since the client's load time? Always fresh, no caching, no side
// effects beyond reading the freshness map the watcher maintains.
func (s *Server) handleCheckUpdates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		http.Error(w, "missing path", http.StatusBadRequest)
		return
	}
	since, err := strconv.ParseInt(q.Get("since"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid since", http.StatusBadRequest)
		return
	}

	key, err := parseHost(r.Host)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	hasUpdate, ts := s.Cache.UpdatedSince(key, path, since)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err = json.NewEncoder(w).Encode(checkUpdatesResponse{HasUpdate: hasUpdate, Timestamp: ts}); err != nil {
		log.D.F("app: check-updates encode: %v", err)
	}
}
