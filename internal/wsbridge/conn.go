package wsbridge

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"tally/internal/logging"
	"tally/internal/protocol"
)

// Conn is one websocket connection speaking the message protocol. It
// satisfies protocol.Bridge on both the daemon and client sides.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	// writeMu serializes writes; gorilla connections allow only one
	// concurrent writer.
	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[int]func(*protocol.Message)
	nextID int
	closed bool

	readOnce sync.Once
	done     chan struct{}
}

func newConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Conn{
		ws:     ws,
		logger: logger,
		subs:   make(map[int]func(*protocol.Message)),
		done:   make(chan struct{}),
	}
}

// Send encodes m and writes it as one text frame.
func (c *Conn) Send(m *protocol.Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return protocol.ErrBridgeClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// OnMessage registers fn for every decoded inbound message and starts the
// read pump on first use. The returned function removes the subscription.
func (c *Conn) OnMessage(fn func(*protocol.Message)) (func(), error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, protocol.ErrBridgeClosed
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	c.readOnce.Do(func() { go c.readLoop() })

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}, nil
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.subs = make(map[int]func(*protocol.Message))
	c.mu.Unlock()

	close(c.done)
	return c.ws.Close()
}

// Done is closed when the connection has shut down, from either side.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read ended", logging.Error(err))
			}
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Warn("malformed message dropped", logging.Error(err))
			continue
		}
		c.mu.Lock()
		subs := make([]func(*protocol.Message), 0, len(c.subs))
		for _, fn := range c.subs {
			subs = append(subs, fn)
		}
		c.mu.Unlock()
		for _, fn := range subs {
			fn(msg)
		}
	}
}
