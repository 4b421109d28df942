package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"gateway.nsyte.dev/pkg/identity"
)

// siteDir returns <cacheDir>/<npub>/<identifier|"root">, the disk layout the
// spec fixes for a site's cache directory. Returns "" if the disk tier is
// disabled or the pubkey cannot be rendered as an npub.
func (c *Cache) siteDir(key SiteKey) string {
	if c.dir == "" {
		return ""
	}
	npub, err := identity.EncodeNpub(key.Pubkey)
	if chk.E(err) {
		return ""
	}
	id := key.Identifier
	if id == "" {
		id = "root"
	}
	return filepath.Join(c.dir, npub, id)
}

func (c *Cache) persistManifest(key SiteKey) {
	dir := c.siteDir(key)
	if dir == "" {
		return
	}
	snap := c.Snapshot(key)
	if snap.Manifest == nil {
		return
	}
	data, err := json.Marshal(snap.Manifest)
	if chk.E(err) {
		return
	}
	if err = os.MkdirAll(dir, 0o755); chk.E(err) {
		return
	}
	if err = os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); chk.E(err) {
		log.W.F("cache: failed to persist manifest for %s/%s: %v", key.Pubkey, key.Identifier, err)
	}
}

func (c *Cache) diskBlobPath(key SiteKey, hash string, decoded bool) string {
	dir := c.siteDir(key)
	if dir == "" {
		return ""
	}
	name := hash
	if decoded {
		name += "-decompressed"
	}
	return filepath.Join(dir, name)
}

func (c *Cache) readDiskBlob(key SiteKey, hash string, decoded bool) ([]byte, bool) {
	path := c.diskBlobPath(key, hash, decoded)
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) writeDiskBlob(key SiteKey, hash string, decoded bool, data []byte) {
	path := c.diskBlobPath(key, hash, decoded)
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); chk.E(err) {
		return
	}
	if err := os.WriteFile(path, data, 0o644); chk.E(err) {
		log.W.F("cache: failed to write blob %s: %v", hash, err)
	}
}
