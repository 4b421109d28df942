package cache

import (
	"context"
	"fmt"

	"gateway.nsyte.dev/pkg/blobstore"
	"gateway.nsyte.dev/pkg/content"
)

// getMemBlob and putMemBlob implement the in-process tier, the first of the
// two cache layers consulted before any disk or network access.
func (c *Cache) getMemBlob(key SiteKey, hash string, decoded bool) ([]byte, bool) {
	c.blobMu.Lock()
	defer c.blobMu.Unlock()
	b, ok := c.blobs[blobKey{site: key, hash: hash, decoded: decoded}]
	return b, ok
}

func (c *Cache) putMemBlob(key SiteKey, hash string, decoded bool, data []byte) {
	c.blobMu.Lock()
	defer c.blobMu.Unlock()
	c.blobs[blobKey{site: key, hash: hash, decoded: decoded}] = data
}

func (c *Cache) dropBlob(key SiteKey, hash string) {
	c.blobMu.Lock()
	delete(c.blobs, blobKey{site: key, hash: hash, decoded: false})
	delete(c.blobs, blobKey{site: key, hash: hash, decoded: true})
	c.blobMu.Unlock()
}

// GetRaw returns the raw blob bytes for hash if cached in memory or on disk.
func (c *Cache) GetRaw(key SiteKey, hash string) ([]byte, bool) {
	if b, ok := c.getMemBlob(key, hash, false); ok {
		return b, true
	}
	if b, ok := c.readDiskBlob(key, hash, false); ok {
		c.putMemBlob(key, hash, false, b)
		return b, true
	}
	return nil, false
}

// GetDecompressed returns the decompressed bytes for hash if cached.
func (c *Cache) GetDecompressed(key SiteKey, hash string) ([]byte, bool) {
	if b, ok := c.getMemBlob(key, hash, true); ok {
		return b, true
	}
	if b, ok := c.readDiskBlob(key, hash, true); ok {
		c.putMemBlob(key, hash, true, b)
		return b, true
	}
	return nil, false
}

func (c *Cache) putRaw(key SiteKey, hash string, data []byte) {
	c.putMemBlob(key, hash, false, data)
	c.writeDiskBlob(key, hash, false, data)
}

func (c *Cache) putDecompressed(key SiteKey, hash string, data []byte) {
	c.putMemBlob(key, hash, true, data)
	c.writeDiskBlob(key, hash, true, data)
}

// Resolve returns the bytes to serve for one candidate: the logical hash,
// its storage variant, and the server list to try on a miss. It consults
// the decompressed cache first (for compressed variants), then the raw
// cache, then downloads via dl, caching and decompressing as needed. A
// decompression failure invalidates both cache keys for hash and returns an
// error so the caller advances to its next candidate — per spec this never
// surfaces to the client unless every candidate is exhausted.
func (c *Cache) Resolve(ctx context.Context, key SiteKey, hash string, variant content.Variant, servers []string, dl *blobstore.Downloader) ([]byte, error) {
	if variant != content.Plain {
		if b, ok := c.GetDecompressed(key, hash); ok {
			return b, nil
		}
	} else if b, ok := c.GetRaw(key, hash); ok {
		return b, nil
	}

	raw, ok := c.GetRaw(key, hash)
	if !ok {
		sfKey := key.Pubkey + "\x00" + key.Identifier + "\x00" + hash
		v, err, _ := c.blobLoad.Do(sfKey, func() (any, error) {
			return dl.Fetch(ctx, hash, servers)
		})
		if err != nil {
			return nil, fmt.Errorf("cache: fetch %s: %w", hash, err)
		}
		raw = v.([]byte)
		c.putRaw(key, hash, raw)
	}
	if variant == content.Plain {
		return raw, nil
	}

	decoded, err := content.Decompress(variant, raw)
	if err != nil {
		c.dropBlob(key, hash)
		return nil, fmt.Errorf("cache: decompress %s: %w", hash, err)
	}
	c.putDecompressed(key, hash, decoded)
	return decoded, nil
}
