package manifest

import (
	"context"
	"testing"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/eventstore"
	"gateway.nsyte.dev/pkg/relaypool"
)

func TestFiles(t *testing.T) {
	m := &event.E{Tags: event.Tags{
		{"path", "/index.html", "hash-a"},
		{"server", "https://blossom.example"},
		{"path", "/app.js", "hash-b"},
		{"path", "/too-short"},
	}}
	files := Files(m)
	if len(files) != 2 {
		t.Fatalf("Files returned %d entries, want 2", len(files))
	}
	if files[0] != (File{Path: "/index.html", SHA256: "hash-a"}) {
		t.Errorf("files[0] = %+v", files[0])
	}
	if files[1] != (File{Path: "/app.js", SHA256: "hash-b"}) {
		t.Errorf("files[1] = %+v", files[1])
	}
}

func TestFilesNilManifest(t *testing.T) {
	if got := Files(nil); got != nil {
		t.Errorf("Files(nil) = %v, want nil", got)
	}
}

func TestServers(t *testing.T) {
	m := &event.E{Tags: event.Tags{
		{"server", "https://one.example"},
		{"path", "/index.html", "hash-a"},
		{"server", "https://two.example"},
		{"server"},
	}}
	servers := Servers(m)
	want := []string{"https://one.example", "https://two.example"}
	if len(servers) != len(want) {
		t.Fatalf("Servers returned %v, want %v", servers, want)
	}
	for i := range want {
		if servers[i] != want[i] {
			t.Errorf("servers[%d] = %q, want %q", i, servers[i], want[i])
		}
	}
}

func TestServersNilManifest(t *testing.T) {
	if got := Servers(nil); got != nil {
		t.Errorf("Servers(nil) = %v, want nil", got)
	}
}

func TestRelayURLsSkipsWriteOnly(t *testing.T) {
	ev := &event.E{Tags: event.Tags{
		{"r", "wss://read.example"},
		{"r", "wss://write-only.example", "write"},
		{"r"},
	}}
	got := RelayURLs(ev)
	if len(got) != 1 || got[0] != "wss://read.example" {
		t.Errorf("RelayURLs = %v, want only the read relay", got)
	}
}

func TestRelayURLsNilEvent(t *testing.T) {
	if got := RelayURLs(nil); got != nil {
		t.Errorf("RelayURLs(nil) = %v, want nil", got)
	}
}

// ResolveProfile and Resolve both ultimately depend on a live relay
// connection to exercise their verification/fold logic end to end; with no
// relays configured they degenerate to a pure event-store lookup, which is
// what this test pins down.
func TestResolveProfileWithNoRelaysReturnsNils(t *testing.T) {
	r := New(relaypool.New(), eventstore.New())
	profile, relayList, serverList := r.ResolveProfile(context.Background(), nil, "pk")
	if profile != nil || relayList != nil || serverList != nil {
		t.Errorf("ResolveProfile with no relays = (%v, %v, %v), want all nil", profile, relayList, serverList)
	}
}
