// Package envelope encodes and decodes the nostr relay wire protocol: tagged
// JSON arrays exchanged over a websocket connection. The relay pool (pkg
// relaypool) depends only on this codec and a raw websocket connection, never
// on HTTP — this keeps the wire format isolated from the transport that
// carries it, the way the teacher splits its encoders from its transport.
package envelope

import (
	"encoding/json"
	"fmt"

	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/filter"
)

// Req is a client→relay subscription request: ["REQ", subID, filter...].
type Req struct {
	SubID   string
	Filters []filter.F
}

// MarshalJSON renders a REQ envelope.
func (r Req) MarshalJSON() ([]byte, error) {
	arr := make([]any, 0, 2+len(r.Filters))
	arr = append(arr, "REQ", r.SubID)
	for _, f := range r.Filters {
		arr = append(arr, f)
	}
	return json.Marshal(arr)
}

// Close is a client→relay unsubscribe: ["CLOSE", subID].
type Close struct {
	SubID string
}

func (c Close) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{"CLOSE", c.SubID})
}

// EventPublish is a client→relay publish: ["EVENT", event].
type EventPublish struct {
	Event *event.E
}

func (e EventPublish) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{"EVENT", e.Event})
}

// Kind identifies which relay→client envelope a raw frame decodes to.
type Kind string

const (
	KindEvent  Kind = "EVENT"
	KindEOSE   Kind = "EOSE"
	KindOK     Kind = "OK"
	KindNotice Kind = "NOTICE"
	KindClosed Kind = "CLOSED"
	KindAuth   Kind = "AUTH"
)

// Inbound is a decoded relay→client frame. Only the fields relevant to
// Kind are populated.
type Inbound struct {
	Kind    Kind
	SubID   string
	Event   *event.E
	OK      bool
	Message string
}

// Decode parses a raw relay→client frame. Envelope kinds the gateway never
// needs to act on (AUTH, CLOSED) still parse, carrying whatever text payload
// they had, so a caller can log them without a decode failure.
func Decode(raw []byte) (Inbound, error) {
	var head []json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return Inbound{}, fmt.Errorf("envelope: malformed frame: %w", err)
	}
	if len(head) == 0 {
		return Inbound{}, fmt.Errorf("envelope: empty frame")
	}
	var tag string
	if err := json.Unmarshal(head[0], &tag); err != nil {
		return Inbound{}, fmt.Errorf("envelope: missing tag: %w", err)
	}

	switch Kind(tag) {
	case KindEvent:
		if len(head) != 3 {
			return Inbound{}, fmt.Errorf("envelope: EVENT wants 3 elements, got %d", len(head))
		}
		var subID string
		if err := json.Unmarshal(head[1], &subID); err != nil {
			return Inbound{}, fmt.Errorf("envelope: EVENT subID: %w", err)
		}
		var ev event.E
		if err := json.Unmarshal(head[2], &ev); err != nil {
			return Inbound{}, fmt.Errorf("envelope: EVENT payload: %w", err)
		}
		return Inbound{Kind: KindEvent, SubID: subID, Event: &ev}, nil

	case KindEOSE:
		if len(head) != 2 {
			return Inbound{}, fmt.Errorf("envelope: EOSE wants 2 elements, got %d", len(head))
		}
		var subID string
		if err := json.Unmarshal(head[1], &subID); err != nil {
			return Inbound{}, fmt.Errorf("envelope: EOSE subID: %w", err)
		}
		return Inbound{Kind: KindEOSE, SubID: subID}, nil

	case KindOK:
		if len(head) < 3 {
			return Inbound{}, fmt.Errorf("envelope: OK wants >=3 elements, got %d", len(head))
		}
		var id string
		var ok bool
		var msg string
		_ = json.Unmarshal(head[1], &id)
		_ = json.Unmarshal(head[2], &ok)
		if len(head) > 3 {
			_ = json.Unmarshal(head[3], &msg)
		}
		return Inbound{Kind: KindOK, SubID: id, OK: ok, Message: msg}, nil

	case KindNotice:
		var msg string
		if len(head) > 1 {
			_ = json.Unmarshal(head[1], &msg)
		}
		return Inbound{Kind: KindNotice, Message: msg}, nil

	case KindClosed:
		var subID, msg string
		if len(head) > 1 {
			_ = json.Unmarshal(head[1], &subID)
		}
		if len(head) > 2 {
			_ = json.Unmarshal(head[2], &msg)
		}
		return Inbound{Kind: KindClosed, SubID: subID, Message: msg}, nil

	case KindAuth:
		var msg string
		if len(head) > 1 {
			_ = json.Unmarshal(head[1], &msg)
		}
		return Inbound{Kind: KindAuth, Message: msg}, nil

	default:
		return Inbound{}, fmt.Errorf("envelope: unrecognised tag %q", tag)
	}
}
