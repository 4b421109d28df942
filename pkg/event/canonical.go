package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Canonical returns the NIP-01 canonical serialization of the event used to
// derive its id: [0, pubkey, created_at, kind, tags, content]. This is
// deliberately not the same as json.Marshal(e) — field order and the
// leading 0 are part of the protocol, not an implementation detail.
func (e *E) Canonical() ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = Tags{}
	}
	arr := []any{0, e.PubKey, e.CreatedAt, e.Kind, tags, e.Content}
	return json.Marshal(arr)
}

// ComputeID returns the hex-encoded sha256 of the event's canonical form.
func (e *E) ComputeID() (string, error) {
	c, err := e.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(c)
	return hex.EncodeToString(sum[:]), nil
}
