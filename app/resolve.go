package app

import (
	"strings"

	"gateway.nsyte.dev/pkg/content"
	"gateway.nsyte.dev/pkg/manifest"
)

type resolved struct {
	Path    string // manifest path actually matched
	SHA256  string
	Variant content.Variant
	Status  int
}

func fileIndex(files []manifest.File) map[string]string {
	idx := make(map[string]string, len(files))
	for _, f := range files {
		idx[f.Path] = f.SHA256
	}
	return idx
}

func tryLogicalPath(idx map[string]string, logicalPath string, accept content.Accepted) (string, content.Variant, bool) {
	for _, c := range content.Candidates(logicalPath, accept) {
		if hash, ok := idx[c.Path]; ok {
			return hash, c.Variant, true
		}
	}
	return "", content.Plain, false
}

// resolvePath implements the path-resolution algorithm: try the exact path,
// fall back to directory-index conventions for directory-like requests, and
// finally to a manifest-declared 404.html. Returns found == false only when
// no candidate — including 404.html — exists in the manifest at all.
func resolvePath(files []manifest.File, rawPath string, accept content.Accepted) (resolved, bool) {
	idx := fileIndex(files)

	for _, logical := range manifest.CandidatePaths(rawPath) {
		if hash, variant, ok := tryLogicalPath(idx, logical, accept); ok {
			status := 200
			if strings.HasSuffix(logical, "404.html") {
				status = 404
			}
			return resolved{Path: logical, SHA256: hash, Variant: variant, Status: status}, true
		}
	}
	return resolved{}, false
}

func looksLikeDirectory(rawPath string) bool {
	return manifest.LooksLikeDirectory(rawPath)
}
