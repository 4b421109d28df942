package relaypool

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"gateway.nsyte.dev/pkg/envelope"
)

// relayConn is the single websocket connection kept open for one relay URL,
// shared by every concurrent subscription against that relay. A read pump
// goroutine demultiplexes inbound frames to per-subscription channels by
// subID (or, for OK frames, by event id — the same namespace).
type relayConn struct {
	url string

	mu             sync.Mutex
	conn           *websocket.Conn
	subs           map[string]chan envelope.Inbound
	unhealthyUntil time.Time
	backoff        time.Duration

	writeMu sync.Mutex
}

func (p *Pool) ensureConn(ctx context.Context, url string) (*relayConn, error) {
	p.mu.Lock()
	rc, ok := p.conns[url]
	if !ok {
		rc = &relayConn{url: url, subs: make(map[string]chan envelope.Inbound)}
		p.conns[url] = rc
	}
	p.mu.Unlock()

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.conn != nil {
		return rc, nil
	}
	if now := time.Now(); now.Before(rc.unhealthyUntil) {
		return nil, context.DeadlineExceeded
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if chk.E(err) {
		rc.bumpBackoffLocked()
		return nil, err
	}
	conn.SetReadLimit(4 << 20)
	rc.conn = conn
	rc.backoff = 0
	go rc.readPump()
	return rc, nil
}

func (rc *relayConn) bumpBackoffLocked() {
	if rc.backoff == 0 {
		rc.backoff = minBackoff
	} else {
		rc.backoff *= 2
		if rc.backoff > maxBackoff {
			rc.backoff = maxBackoff
		}
	}
	rc.unhealthyUntil = time.Now().Add(rc.backoff)
}

func (rc *relayConn) markUnhealthy() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.bumpBackoffLocked()
}

func (rc *relayConn) register(key string) chan envelope.Inbound {
	ch := make(chan envelope.Inbound, 32)
	rc.mu.Lock()
	rc.subs[key] = ch
	rc.mu.Unlock()
	return ch
}

func (rc *relayConn) unregister(key string) {
	rc.mu.Lock()
	ch, ok := rc.subs[key]
	if ok {
		delete(rc.subs, key)
	}
	rc.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (rc *relayConn) send(ctx context.Context, v json.Marshaler) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	rc.mu.Lock()
	conn := rc.conn
	rc.mu.Unlock()
	if conn == nil {
		return context.Canceled
	}
	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()
	return conn.Write(ctx, websocket.MessageText, data)
}

// readPump owns the connection's read side for its lifetime. A frame that
// fails to decode is logged and skipped; a read error drops the connection
// and backs the relay off. Neither blocks or corrupts any other relay's
// connection.
func (rc *relayConn) readPump() {
	ctx := context.Background()
	for {
		rc.mu.Lock()
		conn := rc.conn
		rc.mu.Unlock()
		if conn == nil {
			return
		}
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.D.F("relaypool: %s read error: %v", rc.url, err)
			rc.teardown()
			return
		}
		in, err := envelope.Decode(data)
		if err != nil {
			log.D.F("relaypool: %s %v", rc.url, err)
			continue
		}
		rc.dispatch(in)
	}
}

// dispatch sends under rc.mu, held for the lookup and the send together, so
// a concurrent unregister/teardown can never close a channel dispatch is
// about to write to: both the map delete and the channel close happen only
// once this lock is released, and by then dispatch has either already sent
// or already seen the subscription gone.
func (rc *relayConn) dispatch(in envelope.Inbound) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	ch, ok := rc.subs[in.SubID]
	if !ok {
		if in.Kind == envelope.KindNotice {
			log.D.F("relaypool: %s NOTICE: %s", rc.url, in.Message)
		}
		return
	}
	select {
	case ch <- in:
	default:
		log.W.F("relaypool: %s dropping frame, subscriber %s not keeping up", rc.url, in.SubID)
	}
}

// teardown closes the underlying connection, fails every waiting
// subscription, and marks the relay unhealthy so the next request backs off
// instead of hammering a relay that just dropped us.
func (rc *relayConn) teardown() {
	rc.mu.Lock()
	conn := rc.conn
	rc.conn = nil
	subs := rc.subs
	rc.subs = make(map[string]chan envelope.Inbound)
	rc.bumpBackoffLocked()
	rc.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}
	for _, ch := range subs {
		close(ch)
	}
}
