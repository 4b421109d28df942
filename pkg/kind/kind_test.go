package kind

import "testing"

func TestIsReplaceable(t *testing.T) {
	cases := []struct {
		k    T
		want bool
	}{
		{Profile, false},
		{RelayListMetadata, true},
		{BlobServerList, true},
		{RootSite, true},
		{NamedSite, false},
		{9999, false},
		{20000, false},
	}
	for _, c := range cases {
		if got := IsReplaceable(c.k); got != c.want {
			t.Errorf("IsReplaceable(%d) = %v, want %v", c.k, got, c.want)
		}
	}
}

func TestIsParameterizedReplaceable(t *testing.T) {
	cases := []struct {
		k    T
		want bool
	}{
		{NamedSite, true},
		{RootSite, false},
		{29999, false},
		{40000, false},
		{30000, true},
	}
	for _, c := range cases {
		if got := IsParameterizedReplaceable(c.k); got != c.want {
			t.Errorf("IsParameterizedReplaceable(%d) = %v, want %v", c.k, got, c.want)
		}
	}
}

func TestIsManifest(t *testing.T) {
	if !IsManifest(RootSite) || !IsManifest(NamedSite) {
		t.Error("expected both manifest kinds to report true")
	}
	if IsManifest(Profile) {
		t.Error("profile kind is not a manifest")
	}
}
