package relaypool

import (
	"testing"
	"time"

	"gateway.nsyte.dev/pkg/envelope"
)

func newTestConn() *relayConn {
	return &relayConn{url: "wss://test.example", subs: make(map[string]chan envelope.Inbound)}
}

func TestRegisterUnregisterClosesChannel(t *testing.T) {
	rc := newTestConn()
	ch := rc.register("sub1")
	rc.unregister("sub1")
	if _, open := <-ch; open {
		t.Error("unregister should close the subscriber channel")
	}
}

func TestUnregisterUnknownKeyIsNoop(t *testing.T) {
	rc := newTestConn()
	rc.unregister("never-registered") // must not panic
}

func TestDispatchDeliversToRegisteredSubscriber(t *testing.T) {
	rc := newTestConn()
	ch := rc.register("sub1")
	in := envelope.Inbound{Kind: envelope.KindEOSE, SubID: "sub1"}
	rc.dispatch(in)
	select {
	case got := <-ch:
		if got.SubID != "sub1" {
			t.Errorf("dispatch delivered %+v", got)
		}
	default:
		t.Fatal("expected a frame to be delivered")
	}
}

func TestDispatchDropsFrameForUnknownSub(t *testing.T) {
	rc := newTestConn()
	// must not panic or block when no subscriber is registered
	rc.dispatch(envelope.Inbound{Kind: envelope.KindEvent, SubID: "nobody"})
}

func TestDispatchDropsOnFullBuffer(t *testing.T) {
	rc := newTestConn()
	ch := rc.register("sub1")
	for i := 0; i < cap(ch)+5; i++ {
		rc.dispatch(envelope.Inbound{Kind: envelope.KindEvent, SubID: "sub1"})
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected the buffer to stay full rather than block, len=%d cap=%d", len(ch), cap(ch))
	}
}

func TestBumpBackoffLockedGrowsExponentiallyAndCaps(t *testing.T) {
	rc := newTestConn()
	rc.bumpBackoffLocked()
	if rc.backoff != minBackoff {
		t.Errorf("first bump should set minBackoff, got %v", rc.backoff)
	}
	for i := 0; i < 20; i++ {
		rc.bumpBackoffLocked()
	}
	if rc.backoff != maxBackoff {
		t.Errorf("backoff should cap at maxBackoff, got %v", rc.backoff)
	}
	if !rc.unhealthyUntil.After(time.Now().Add(-time.Second)) {
		t.Error("unhealthyUntil should be set to a future-ish deadline")
	}
}

func TestTeardownClosesAllSubsAndMarksUnhealthy(t *testing.T) {
	rc := newTestConn()
	ch1 := rc.register("sub1")
	ch2 := rc.register("sub2")
	rc.teardown()

	if _, open := <-ch1; open {
		t.Error("teardown should close sub1's channel")
	}
	if _, open := <-ch2; open {
		t.Error("teardown should close sub2's channel")
	}
	if rc.backoff == 0 {
		t.Error("teardown should have bumped the backoff")
	}
	if len(rc.subs) != 0 {
		t.Error("teardown should leave an empty subs map for future registrations")
	}
}
