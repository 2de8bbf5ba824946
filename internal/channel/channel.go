package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// pendingLimit bounds the number of events held while the link is down.
// Events past the limit are dropped.
const pendingLimit = 256

// ConnectionError reports an unusable channel (missing credential,
// failed dial, closed handle).
type ConnectionError struct {
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("channel unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("channel unavailable: %s", e.Reason)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Handler is invoked once per inbound event matching its name, in arrival
// order, on the channel's single dispatch goroutine.
type Handler func(payload json.RawMessage)

// Channel is the shared, session-long event connection to the backend.
// One instance is created per session and passed to every consumer.
type Channel struct {
	url   string
	token string

	mu      sync.Mutex
	conn    *websocket.Conn
	pending [][]byte
	closed  bool

	hmu      sync.RWMutex
	handlers map[string][]Handler
}

// New creates an unconnected channel handle for the given socket URL and
// session token.
func New(url, token string) *Channel {
	return &Channel{
		url:      url,
		token:    token,
		handlers: make(map[string][]Handler),
	}
}

// Connect dials the backend. It is idempotent: calling it while the link
// is up is a no-op. On success any events queued while the link was down
// are flushed in order.
func (c *Channel) Connect(ctx context.Context) error {
	if c.token == "" {
		return &ConnectionError{Reason: "session token required"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &ConnectionError{Reason: "channel closed"}
	}
	if c.conn != nil {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url+"?token="+c.token, nil)
	if err != nil {
		return &ConnectionError{Reason: "dial failed", Err: err}
	}
	c.conn = conn

	// Flush events queued while the link was down
	for _, data := range c.pending {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Msg("Failed to flush pending event")
			break
		}
	}
	c.pending = nil

	go c.readLoop(conn)

	log.Info().Str("url", c.url).Msg("Channel connected")
	return nil
}

// Emit sends a named event to the server. It is fire-and-forget: if the
// link is down the event is queued until the next successful Connect, and
// dropped once the queue is full. The returned error reports only a
// payload that cannot be encoded.
func (c *Channel) Emit(event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	data, err := json.Marshal(Envelope{Event: event, Payload: body})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	if c.conn == nil {
		if len(c.pending) < pendingLimit {
			c.pending = append(c.pending, data)
		} else {
			log.Debug().Str("event", event).Msg("Pending queue full, event dropped")
		}
		return nil
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to write event")
		c.conn.Close()
		c.conn = nil
		if len(c.pending) < pendingLimit {
			c.pending = append(c.pending, data)
		} else {
			log.Debug().Str("event", event).Msg("Pending queue full, event dropped")
		}
	}
	return nil
}

// On registers a handler for a named inbound event. Registration is
// expected to happen before Connect; handlers run on the dispatch
// goroutine and must not block.
func (c *Channel) On(event string, handler Handler) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// Connected reports whether the link is currently up.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears the channel down. Pending events are discarded; the handle
// cannot be reconnected afterwards.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// readLoop reads inbound frames and dispatches handlers sequentially.
// Each handler runs to completion before the next frame is dequeued.
func (c *Channel) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Msg("Channel read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Error().Err(err).Msg("Failed to parse inbound event")
			continue
		}

		c.hmu.RLock()
		handlers := c.handlers[env.Event]
		c.hmu.RUnlock()

		if len(handlers) == 0 {
			log.Debug().Str("event", env.Event).Msg("No handler for inbound event")
			continue
		}
		for _, h := range handlers {
			h(env.Payload)
		}
	}
}
