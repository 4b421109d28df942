// Package kind holds the nostr event kind numbers the gateway cares about
// and the replaceable/parameterized-replaceable classification rules that
// govern which event wins when two with the same (kind, pubkey, d) exist.
package kind

// T is a nostr event kind number.
type T uint16

// Kinds the resolver gateway resolves or consults as fallback sources.
const (
	Profile           T = 0     // NIP-01 profile metadata, 10-minute TTL cache
	RootSite          T = 15128 // nsite manifest, root site (no identifier)
	RelayListMetadata T = 10002 // NIP-65 relay list, fallback source only
	BlobServerList    T = 10063 // Blossom server list, fallback source only
	NamedSite         T = 35128 // nsite manifest, named site (d = identifier)
)

// replaceableStart/End bound the NIP-01 replaceable range [10000, 20000):
// only the newest event for a given (kind, pubkey) is authoritative.
const (
	replaceableStart T = 10000
	replaceableEnd   T = 20000

	// parameterizedReplaceableStart/End bound [30000, 40000): only the
	// newest event for a given (kind, pubkey, d) is authoritative.
	parameterizedReplaceableStart T = 30000
	parameterizedReplaceableEnd   T = 40000
)

// IsReplaceable reports whether only the newest event of this kind for a
// given pubkey is meaningful (no "d" tag is consulted).
func IsReplaceable(k T) bool {
	return k >= replaceableStart && k < replaceableEnd
}

// IsParameterizedReplaceable reports whether only the newest event of this
// kind for a given (pubkey, d) is meaningful.
func IsParameterizedReplaceable(k T) bool {
	return k >= parameterizedReplaceableStart && k < parameterizedReplaceableEnd
}

// IsManifest reports whether k is one of the two site-manifest kinds.
func IsManifest(k T) bool {
	return k == RootSite || k == NamedSite
}
