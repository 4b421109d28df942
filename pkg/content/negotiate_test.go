package content

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

func TestParseAcceptEncoding(t *testing.T) {
	cases := []struct {
		header string
		want   Accepted
	}{
		{"", Accepted{}},
		{"gzip", Accepted{Gzip: true}},
		{"br", Accepted{Brotli: true}},
		{"br, gzip", Accepted{Brotli: true, Gzip: true}},
		{"gzip;q=1.0, br;q=0.9", Accepted{Brotli: true, Gzip: true}},
		{"deflate", Accepted{}},
	}
	for _, c := range cases {
		if got := ParseAcceptEncoding(c.header); got != c.want {
			t.Errorf("ParseAcceptEncoding(%q) = %+v, want %+v", c.header, got, c.want)
		}
	}
}

func TestCandidatesOrder(t *testing.T) {
	cands := Candidates("/app.js", Accepted{Brotli: true, Gzip: true})
	want := []Candidate{
		{Path: "/app.js.br", Variant: Brotli},
		{Path: "/app.js.gz", Variant: Gzip},
		{Path: "/app.js", Variant: Plain},
	}
	if len(cands) != len(want) {
		t.Fatalf("Candidates returned %d entries, want %d", len(cands), len(want))
	}
	for i := range want {
		if cands[i] != want[i] {
			t.Errorf("Candidates[%d] = %+v, want %+v", i, cands[i], want[i])
		}
	}
}

func TestCandidatesNoAcceptedEncodings(t *testing.T) {
	cands := Candidates("/app.js", Accepted{})
	if len(cands) != 1 || cands[0].Variant != Plain {
		t.Errorf("Candidates with no accepted encodings = %+v", cands)
	}
}

func TestDecompressPlainPassthrough(t *testing.T) {
	raw := []byte("hello world")
	out, err := Decompress(Plain, raw)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("Decompress(Plain) = %q, want %q", out, raw)
	}
}

func TestDecompressGzipRoundTrip(t *testing.T) {
	want := []byte("the quick brown fox")
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(want); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	got, err := Decompress(Gzip, buf.Bytes())
	if err != nil {
		t.Fatalf("Decompress(Gzip): %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress(Gzip) = %q, want %q", got, want)
	}
}

func TestDecompressBrotliRoundTrip(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(want); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}
	got, err := Decompress(Brotli, buf.Bytes())
	if err != nil {
		t.Fatalf("Decompress(Brotli): %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress(Brotli) = %q, want %q", got, want)
	}
}

func TestDecompressGzipRejectsGarbage(t *testing.T) {
	if _, err := Decompress(Gzip, []byte("not gzip data")); err == nil {
		t.Error("expected error decompressing non-gzip data")
	}
}
