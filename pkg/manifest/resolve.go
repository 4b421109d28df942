package manifest

import (
	"path"
	"strings"
)

// RootCandidates is the order of conventional entry points tried for "/",
// ahead of the generic index.html/index.htm/README.md fallback used for
// other directory-like paths.
var RootCandidates = []string{
	"index.html", "index.htm", "README.md",
	"docs/index.html", "dist/index.html", "public/index.html", "build/index.html",
	"404.html", "docs/404.html",
}

// dirIndexCandidates is tried under a directory-like non-root path.
var dirIndexCandidates = []string{"index.html", "index.htm", "README.md"}

// CandidatePaths returns, in priority order, the logical manifest paths that
// could satisfy rawPath: the exact path, then directory-index conventions,
// then (for "/") the root entry-point list, then a manifest 404.html.
// Compression variants are layered on top of each entry by content.Candidates
// — this function only knows about logical paths.
func CandidatePaths(rawPath string) []string {
	if rawPath == "/" {
		out := make([]string, 0, len(RootCandidates))
		for _, rel := range RootCandidates {
			out = append(out, "/"+rel)
		}
		return out
	}

	out := []string{rawPath}
	if LooksLikeDirectory(rawPath) {
		prefix := strings.TrimSuffix(rawPath, "/")
		for _, rel := range dirIndexCandidates {
			out = append(out, prefix+"/"+rel)
		}
	}
	return append(out, "/404.html")
}

// LooksLikeDirectory reports whether rawPath should fall back to a
// directory-index convention rather than be treated as a file request.
func LooksLikeDirectory(rawPath string) bool {
	if strings.HasSuffix(rawPath, "/") {
		return true
	}
	return !strings.Contains(path.Base(rawPath), ".")
}
