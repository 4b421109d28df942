// Package content implements Accept-Encoding negotiation and decompression
// of pre-compressed manifest variants. A compressed variant is always served
// decompressed — compression here is a storage optimisation, never a wire
// transfer encoding, so callers never set Content-Encoding on the response.
package content

import (
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Accepted is the client's decoded Accept-Encoding capability.
type Accepted struct {
	Brotli bool
	Gzip   bool
}

// ParseAcceptEncoding conservatively token-matches the header value; it does
// not honour quality values, since the only meaningful signal here is
// presence or absence of br/gzip.
func ParseAcceptEncoding(header string) Accepted {
	var a Accepted
	for _, tok := range strings.Split(header, ",") {
		tok = strings.TrimSpace(strings.SplitN(tok, ";", 2)[0])
		switch strings.ToLower(tok) {
		case "br":
			a.Brotli = true
		case "gzip":
			a.Gzip = true
		}
	}
	return a
}

// Variant names one of the three storage forms of a logical file.
type Variant int

const (
	Plain Variant = iota
	Brotli
	Gzip
)

// Candidate is one path to try while resolving a logical path, in the
// preference order a client's Accept-Encoding header implies.
type Candidate struct {
	Path    string // manifest path to look up, e.g. "/app.js.br"
	Variant Variant
}

// Candidates returns, for logical path p, the ordered list of manifest paths
// to try: the brotli variant (if accepted), the gzip variant (if accepted),
// then the plain path. Whether each candidate actually exists in the
// manifest is the caller's concern.
func Candidates(p string, accept Accepted) []Candidate {
	var out []Candidate
	if accept.Brotli {
		out = append(out, Candidate{Path: p + ".br", Variant: Brotli})
	}
	if accept.Gzip {
		out = append(out, Candidate{Path: p + ".gz", Variant: Gzip})
	}
	out = append(out, Candidate{Path: p, Variant: Plain})
	return out
}

// Decompress reverses the storage compression for variant v. Plain passes
// bytes through unchanged.
func Decompress(v Variant, raw []byte) ([]byte, error) {
	switch v {
	case Plain:
		return raw, nil
	case Brotli:
		r := brotli.NewReader(bytes.NewReader(raw))
		return io.ReadAll(r)
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return raw, nil
	}
}
