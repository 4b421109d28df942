// Package relaypool multiplexes nostr subscriptions and publishes over a set
// of websocket relays. It keeps at most one connection per relay URL, fans a
// request out to many relays under a bounded deadline, deduplicates events by
// id, and treats a straggling or misbehaving relay as this request's problem
// alone — it never blocks or poisons any other relay's stream.
package relaypool

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"gateway.nsyte.dev/pkg/envelope"
	"gateway.nsyte.dev/pkg/event"
	"gateway.nsyte.dev/pkg/filter"
)

// Default bounded deadlines per spec: T_req for ordinary subscriptions, a
// longer T_reqManifest for the listing request used by manifest resolution.
const (
	DefaultRequestTimeout         = 5 * time.Second
	DefaultManifestRequestTimeout = 15 * time.Second

	minBackoff = 1 * time.Second
	maxBackoff = 60 * time.Second
)

// Pool owns the relay connections. It is safe for concurrent use.
type Pool struct {
	mu    sync.Mutex
	conns map[string]*relayConn
}

// New returns an empty pool. Connections are opened lazily on first use.
func New() *Pool {
	return &Pool{conns: make(map[string]*relayConn)}
}

// PublishResult is one relay's outcome for a Publish call.
type PublishResult struct {
	OK      bool
	Message string
	Err     error
}

// Request opens a subscription against every named relay, merges their
// streams, deduplicates by event id, and closes the returned channel once
// every relay has signalled EOSE or timeout elapses, whichever comes first.
// Stragglers past the deadline are abandoned; their events are discarded.
func (p *Pool) Request(ctx context.Context, relays []string, f filter.F, timeout time.Duration) <-chan *event.E {
	out := make(chan *event.E, 64)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	subID := newID()

	var seen sync.Map
	var g errgroup.Group
	for _, url := range relays {
		url := url
		g.Go(func() error {
			p.subscribeOne(ctx, url, subID, f, out, &seen)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	go func() {
		defer cancel()
		defer close(out)
		select {
		case <-done:
		case <-ctx.Done():
		}
	}()
	return out
}

// Publish sends ev to every named relay and collects each relay's OK
// response, or its failure to respond within timeout.
func (p *Pool) Publish(ctx context.Context, relays []string, ev *event.E, timeout time.Duration) map[string]PublishResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(map[string]PublishResult, len(relays))
	var mu sync.Mutex
	var g errgroup.Group
	for _, url := range relays {
		url := url
		g.Go(func() error {
			r := p.publishOne(ctx, url, ev)
			mu.Lock()
			results[url] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pool) subscribeOne(ctx context.Context, url, subID string, f filter.F, out chan<- *event.E, seen *sync.Map) {
	rc, err := p.ensureConn(ctx, url)
	if chk.E(err) {
		log.D.F("relaypool: %s unavailable: %v", url, err)
		return
	}

	ch := rc.register(subID)
	defer rc.unregister(subID)

	if err = rc.send(ctx, envelope.Req{SubID: subID, Filters: []filter.F{f}}); chk.E(err) {
		rc.markUnhealthy()
		return
	}
	defer func() {
		_ = rc.send(context.Background(), envelope.Close{SubID: subID})
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			switch in.Kind {
			case envelope.KindEvent:
				if in.Event == nil {
					continue
				}
				if _, dup := seen.LoadOrStore(in.Event.ID, struct{}{}); dup {
					continue
				}
				select {
				case out <- in.Event:
				case <-ctx.Done():
					return
				}
			case envelope.KindEOSE:
				return
			case envelope.KindClosed:
				log.D.F("relaypool: %s closed sub %s: %s", url, subID, in.Message)
				return
			}
		}
	}
}

func (p *Pool) publishOne(ctx context.Context, url string, ev *event.E) PublishResult {
	rc, err := p.ensureConn(ctx, url)
	if err != nil {
		return PublishResult{Err: err}
	}
	ch := rc.register(ev.ID)
	defer rc.unregister(ev.ID)

	if err = rc.send(ctx, envelope.EventPublish{Event: ev}); err != nil {
		rc.markUnhealthy()
		return PublishResult{Err: err}
	}
	select {
	case in, ok := <-ch:
		if !ok {
			return PublishResult{Err: context.Canceled}
		}
		return PublishResult{OK: in.OK, Message: in.Message}
	case <-ctx.Done():
		return PublishResult{Err: ctx.Err()}
	}
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
