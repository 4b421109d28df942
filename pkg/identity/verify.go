package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"gateway.nsyte.dev/pkg/event"
)

// Verify reports whether ev's signature is a valid BIP-340/Schnorr
// signature by ev.PubKey over ev.ID, and that ev.ID actually matches the
// event's canonical serialization (a relay could otherwise hand back a
// correctly-signed id for mismatched content by lying about created_at or
// tags while leaving id untouched — recomputing it closes that gap).
func Verify(ev *event.E) (bool, error) {
	wantID, err := ev.ComputeID()
	if err != nil {
		return false, fmt.Errorf("identity: compute id: %w", err)
	}
	if wantID != ev.ID {
		return false, nil
	}

	pubBytes, err := hex.DecodeString(ev.PubKey)
	if err != nil || len(pubBytes) != 32 {
		return false, fmt.Errorf("identity: invalid pubkey")
	}
	sigBytes, err := hex.DecodeString(ev.Sig)
	if err != nil || len(sigBytes) != 64 {
		return false, fmt.Errorf("identity: invalid signature")
	}
	idBytes, err := hex.DecodeString(ev.ID)
	if err != nil || len(idBytes) != 32 {
		return false, fmt.Errorf("identity: invalid id")
	}

	pubKey, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		return false, fmt.Errorf("identity: parse pubkey: %w", err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false, fmt.Errorf("identity: parse signature: %w", err)
	}
	return sig.Verify(idBytes, pubKey), nil
}
