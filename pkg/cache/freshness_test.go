package cache

import "testing"

func TestMarkUpdatedAndUpdatedSince(t *testing.T) {
	c := New("")
	key := SiteKey{Pubkey: "pk"}

	if hasUpdate, ts := c.UpdatedSince(key, "/a.html", 0); hasUpdate || ts != 0 {
		t.Errorf("UpdatedSince on an untouched path = (%v, %d), want (false, 0)", hasUpdate, ts)
	}

	c.MarkUpdated(key, "/a.html", 1000)
	hasUpdate, ts := c.UpdatedSince(key, "/a.html", 500)
	if !hasUpdate || ts != 1000 {
		t.Errorf("UpdatedSince(500) = (%v, %d), want (true, 1000)", hasUpdate, ts)
	}
	if hasUpdate, _ := c.UpdatedSince(key, "/a.html", 1000); hasUpdate {
		t.Error("UpdatedSince should be false when sinceMs equals the last update time")
	}
}

func TestMarkUpdatedIsMonotonic(t *testing.T) {
	c := New("")
	key := SiteKey{Pubkey: "pk"}
	c.MarkUpdated(key, "/a.html", 1000)
	c.MarkUpdated(key, "/a.html", 500) // stale, should not move it backward
	if _, ts := c.UpdatedSince(key, "/a.html", 0); ts != 1000 {
		t.Errorf("timestamp regressed to %d after an older mark", ts)
	}
}

func TestFreshnessIsolatedPerSite(t *testing.T) {
	c := New("")
	a := SiteKey{Pubkey: "pk-a"}
	b := SiteKey{Pubkey: "pk-b"}
	c.MarkUpdated(a, "/x.html", 1000)
	if hasUpdate, _ := c.UpdatedSince(b, "/x.html", 0); hasUpdate {
		t.Error("a mark on site a should not be visible for the same path under site b")
	}
}
