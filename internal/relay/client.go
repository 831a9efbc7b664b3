package relay

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"

	"nostrdm/internal/domain"
)

// Dialer opens relay connections, optionally through a SOCKS5 proxy
// (e.g. a local Tor daemon at 127.0.0.1:9050).
type Dialer struct {
	Proxy string // host:port of a SOCKS5 proxy; empty dials directly
}

// Conn is one open relay session. It is not safe for concurrent use; the
// pipelines give each goroutine its own Conn.
type Conn struct {
	ws  *websocket.Conn
	url string
}

// Dial connects to one relay endpoint. Connection failures wrap
// domain.ErrRelayUnreachable so callers can treat them as per-endpoint.
func (d Dialer) Dial(ctx context.Context, url string) (*Conn, error) {
	wsd := websocket.Dialer{
		HandshakeTimeout: 30 * time.Second,
	}
	if d.Proxy != "" {
		socks, err := proxy.SOCKS5("tcp", d.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrRelayUnreachable, "socks5 proxy %s: %v", d.Proxy, err)
		}
		wsd.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := socks.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return socks.Dial(network, addr)
		}
	}
	ws, _, err := wsd.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrRelayUnreachable, "%s: %v", url, err)
	}
	c := &Conn{ws: ws, url: url}
	c.applyDeadline(ctx)
	return c, nil
}

func (c *Conn) Close() error { return c.ws.Close() }

// applyDeadline maps the context deadline onto the socket so blocked reads
// and writes unblock when the caller's budget runs out.
func (c *Conn) applyDeadline(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return
	}
	_ = c.ws.SetReadDeadline(deadline)
	_ = c.ws.SetWriteDeadline(deadline)
}

// Fetch runs one subscription to completion: REQ, EVENTs, EOSE. The relay's
// stored events for the filter are returned in arrival order, unverified;
// the pool is responsible for signature checks and deduplication.
func (c *Conn) Fetch(ctx context.Context, filter domain.Filter) ([]domain.Event, error) {
	c.applyDeadline(ctx)
	subID := randomSubID()
	if err := c.writeJSON([]interface{}{"REQ", subID, filter}); err != nil {
		return nil, errors.Wrapf(domain.ErrRelayUnreachable, "%s: sending REQ: %v", c.url, err)
	}

	var out []domain.Event
	for {
		label, frame, err := c.readFrame()
		if err != nil {
			return nil, errors.Wrapf(domain.ErrRelayUnreachable, "%s: reading: %v", c.url, err)
		}
		switch label {
		case "EVENT":
			// ["EVENT", <sub id>, <event>]
			if len(frame) < 3 || !subIDMatches(frame[1], subID) {
				continue
			}
			var ev domain.Event
			if err := json.Unmarshal(frame[2], &ev); err != nil {
				logrus.WithField("relay", c.url).Debug("skipping undecodable event")
				continue
			}
			out = append(out, ev)
		case "EOSE":
			if len(frame) >= 2 && subIDMatches(frame[1], subID) {
				_ = c.writeJSON([]interface{}{"CLOSE", subID})
				return out, nil
			}
		case "CLOSED":
			// Relay terminated the subscription; whatever arrived stands.
			return out, nil
		case "NOTICE":
			logrus.WithField("relay", c.url).Debugf("notice: %s", string(frameTail(frame)))
		}
	}
}

// Publish sends one event and waits for the relay's OK verdict.
func (c *Conn) Publish(ctx context.Context, ev domain.Event) error {
	c.applyDeadline(ctx)
	if err := c.writeJSON([]interface{}{"EVENT", ev}); err != nil {
		return errors.Wrapf(domain.ErrRelayUnreachable, "%s: sending EVENT: %v", c.url, err)
	}
	for {
		label, frame, err := c.readFrame()
		if err != nil {
			return errors.Wrapf(domain.ErrRelayUnreachable, "%s: awaiting OK: %v", c.url, err)
		}
		if label != "OK" || len(frame) < 3 {
			continue
		}
		// ["OK", <event id>, <accepted>, <message>]
		var id string
		var accepted bool
		if json.Unmarshal(frame[1], &id) != nil || id != ev.ID {
			continue
		}
		if err := json.Unmarshal(frame[2], &accepted); err != nil {
			return errors.Wrapf(domain.ErrRelayUnreachable, "%s: malformed OK", c.url)
		}
		if !accepted {
			reason := ""
			if len(frame) >= 4 {
				_ = json.Unmarshal(frame[3], &reason)
			}
			return errors.Errorf("relay %s rejected event %s: %s", c.url, ev.ID, reason)
		}
		return nil
	}
}

func (c *Conn) writeJSON(v interface{}) error {
	return c.ws.WriteJSON(v)
}

// readFrame reads one protocol frame and returns its label plus the raw
// elements.
func (c *Conn) readFrame() (string, []json.RawMessage, error) {
	var frame []json.RawMessage
	if err := c.ws.ReadJSON(&frame); err != nil {
		return "", nil, err
	}
	if len(frame) == 0 {
		return "", nil, errors.New("empty frame")
	}
	var label string
	if err := json.Unmarshal(frame[0], &label); err != nil {
		return "", nil, errors.Wrap(err, "frame label")
	}
	return label, frame, nil
}

func subIDMatches(raw json.RawMessage, want string) bool {
	var got string
	return json.Unmarshal(raw, &got) == nil && got == want
}

func frameTail(frame []json.RawMessage) []byte {
	if len(frame) < 2 {
		return nil
	}
	return frame[1]
}

func randomSubID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "sub-fallback"
	}
	return hex.EncodeToString(b[:])
}
