// Package identity implements the bech32 npub codec and event-signature
// verification the gateway needs to turn a request hostname into a trusted
// pubkey and to decide whether a relay-delivered event is meaningfully
// "signed" rather than merely shaped like one.
package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// npubHRP is the bech32 human-readable prefix for nostr public keys (NIP-19).
const npubHRP = "npub"

// EncodeNpub renders a hex-encoded 32-byte pubkey as its npub bech32 form.
func EncodeNpub(pubkeyHex string) (string, error) {
	raw, err := hex.DecodeString(pubkeyHex)
	if err != nil {
		return "", fmt.Errorf("identity: invalid pubkey hex: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("identity: pubkey must be 32 bytes, got %d", len(raw))
	}
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("identity: convert bits: %w", err)
	}
	return bech32.Encode(npubHRP, data)
}

// DecodeNpub recovers the hex-encoded 32-byte pubkey from its npub form.
func DecodeNpub(npub string) (string, error) {
	hrp, data, err := bech32.Decode(npub)
	if err != nil {
		return "", fmt.Errorf("identity: bech32 decode: %w", err)
	}
	if hrp != npubHRP {
		return "", fmt.Errorf("identity: unexpected bech32 prefix %q", hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("identity: convert bits: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("identity: decoded pubkey must be 32 bytes, got %d", len(raw))
	}
	return hex.EncodeToString(raw), nil
}

// LooksLikeNpub reports whether label could plausibly be (or be prefixed by)
// a bech32 npub — used by the host parser to decide which label position
// holds the pubkey before paying for a full decode.
func LooksLikeNpub(label string) bool {
	return len(label) >= len(npubHRP)+1 && label[:len(npubHRP)] == npubHRP
}
