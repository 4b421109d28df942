package app

import (
	"testing"

	"gateway.nsyte.dev/pkg/content"
	"gateway.nsyte.dev/pkg/manifest"
)

func TestResolvePathExactMatch(t *testing.T) {
	files := []manifest.File{{Path: "/app.js", SHA256: "h1"}}
	res, ok := resolvePath(files, "/app.js", content.Accepted{})
	if !ok || res.Path != "/app.js" || res.Status != 200 {
		t.Errorf("resolvePath(exact) = %+v, ok=%v", res, ok)
	}
}

func TestResolvePathPrefersBrotliVariant(t *testing.T) {
	files := []manifest.File{
		{Path: "/app.js", SHA256: "plain"},
		{Path: "/app.js.br", SHA256: "brotli"},
		{Path: "/app.js.gz", SHA256: "gzip"},
	}
	res, ok := resolvePath(files, "/app.js", content.Accepted{Brotli: true, Gzip: true})
	if !ok || res.Variant != content.Brotli || res.SHA256 != "brotli" {
		t.Errorf("resolvePath should prefer brotli, got %+v", res)
	}
}

func TestResolvePathRootUsesConventionalEntryPoints(t *testing.T) {
	files := []manifest.File{{Path: "/index.html", SHA256: "h1"}}
	res, ok := resolvePath(files, "/", content.Accepted{})
	if !ok || res.Path != "/index.html" || res.Status != 200 {
		t.Errorf("resolvePath(/) = %+v, ok=%v", res, ok)
	}
}

func TestResolvePathRootFallsBackTo404(t *testing.T) {
	files := []manifest.File{{Path: "/404.html", SHA256: "h1"}}
	res, ok := resolvePath(files, "/", content.Accepted{})
	if !ok || res.Path != "/404.html" || res.Status != 404 {
		t.Errorf("resolvePath(/) with only 404.html = %+v, ok=%v", res, ok)
	}
}

func TestResolvePathDirectoryIndexFallback(t *testing.T) {
	files := []manifest.File{{Path: "/docs/index.html", SHA256: "h1"}}
	res, ok := resolvePath(files, "/docs/", content.Accepted{})
	if !ok || res.Path != "/docs/index.html" {
		t.Errorf("resolvePath(/docs/) = %+v, ok=%v", res, ok)
	}
	res2, ok2 := resolvePath(files, "/docs", content.Accepted{})
	if !ok2 || res2.Path != "/docs/index.html" {
		t.Errorf("resolvePath(/docs) = %+v, ok=%v", res2, ok2)
	}
}

func TestResolvePathFallsBackToManifest404(t *testing.T) {
	files := []manifest.File{{Path: "/404.html", SHA256: "h1"}}
	res, ok := resolvePath(files, "/missing.js", content.Accepted{})
	if !ok || res.Path != "/404.html" || res.Status != 404 {
		t.Errorf("resolvePath(missing) = %+v, ok=%v", res, ok)
	}
}

func TestResolvePathNotFoundWhenNo404Declared(t *testing.T) {
	files := []manifest.File{{Path: "/index.html", SHA256: "h1"}}
	_, ok := resolvePath(files, "/missing.js", content.Accepted{})
	if ok {
		t.Error("resolvePath should report not-found when the manifest declares no 404.html")
	}
}

func TestLooksLikeDirectory(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/docs/", true},
		{"/docs", true},
		{"/app.js", false},
		{"/", true},
	}
	for _, c := range cases {
		if got := looksLikeDirectory(c.path); got != c.want {
			t.Errorf("looksLikeDirectory(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
