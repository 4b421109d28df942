package app

import (
	"fmt"
	"net/http"
	"strings"
)

// servePendingPage responds to a cold cache with a self-refreshing loading
// page (HTML-accepting clients) or a plain 404 (everyone else) — the spec's
// rule that a cold cache sheds HTML load without ever claiming a path that
// might not exist.
func servePendingPage(w http.ResponseWriter, acceptsHTML bool) {
	if !acceptsHTML {
		http.Error(w, "loading", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Refresh", "2")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, `<!doctype html><html><head><meta charset="utf-8"><title>Loading…</title></head><body><p>Resolving site, please wait…</p></body></html>`)
}

// serveBuiltinNotFound is the last-resort 404 used when a site has no
// declared 404.html of its own.
func serveBuiltinNotFound(w http.ResponseWriter, acceptsHTML bool) {
	if !acceptsHTML {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = fmt.Fprint(w, `<!doctype html><html><head><meta charset="utf-8"><title>Not Found</title></head><body><h1>404 Not Found</h1></body></html>`)
}

const liveReloadScriptTmpl = `<script>(function(){
  var path = %q;
  var since = Date.now();
  setInterval(function(){
    fetch('/_nsyte/check-updates?path=' + encodeURIComponent(path) + '&since=' + since)
      .then(function(r){ return r.json(); })
      .then(function(j){ if (j.hasUpdate) { location.reload(); } })
      .catch(function(){});
  }, 5000);
})();</script>`

// injectLiveReload inserts the polling script before </body>, or appends it
// at end-of-document when no body tag is present. It is a no-op if the
// marker is already present, so a response is never double-injected.
func injectLiveReload(body []byte, requestPath string) []byte {
	script := fmt.Sprintf(liveReloadScriptTmpl, requestPath)
	if strings.Contains(string(body), script) {
		return body
	}
	s := string(body)
	if i := strings.LastIndex(strings.ToLower(s), "</body>"); i >= 0 {
		return []byte(s[:i] + script + s[i:])
	}
	return append(body, []byte(script)...)
}
