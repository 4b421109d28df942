package app

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

func init() {
	// Go's builtin mime table maps .js to text/javascript on some platforms;
	// the gateway's external interface is fixed to application/javascript.
	_ = mime.AddExtensionType(".js", "application/javascript")
}

// logicalExtension strips any .br/.gz storage suffix so Content-Type is
// derived from the file's real extension, not its compressed form's.
func logicalExtension(manifestPath string) string {
	p := strings.TrimSuffix(strings.TrimSuffix(manifestPath, ".br"), ".gz")
	return filepath.Ext(p)
}

func contentTypeFor(manifestPath string) string {
	if ct := mime.TypeByExtension(logicalExtension(manifestPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// writeResponse assembles the final HTTP response for a resolved file:
// headers, conditional-GET handling, and live-reload injection for HTML.
func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, res resolved, body []byte) {
	etag := fmt.Sprintf("%q", res.SHA256)
	ct := contentTypeFor(res.Path)

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("ETag", etag)

	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if strings.HasPrefix(ct, "text/html") && res.Status != 404 {
		body = injectLiveReload(body, r.URL.Path)
	}

	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(res.Status)
	_, _ = w.Write(body)
}
