// internal/websocket/client.go
package websocket

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// ErrClientBufferFull is returned when a client falls behind and its
// outbound queue overflows. The message is dropped, not blocked on.
var ErrClientBufferFull = errors.New("websocket: client send buffer full")

// ErrClientClosed is returned when a send races the client shutdown.
var ErrClientClosed = errors.New("websocket: client closed")

// Client is one connected browser session. All outbound traffic goes
// through the buffered out channel so slow readers never block the
// server's broadcast path.
type Client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		conn: conn,
		out:  make(chan []byte, sendBufferSize),
	}
}

// ID returns the session identifier assigned at connect time.
func (c *Client) ID() string { return c.id }

// SendEvent queues a server-push event for this client.
func (c *Client) SendEvent(eventType string, payload interface{}) error {
	return c.enqueue(&WSMessage{
		Kind:  "event",
		Event: &WSEvent{Type: eventType, Payload: payload},
	})
}

// SendResponse answers an RPC request. Exactly one of result or errMsg
// is carried back to the caller.
func (c *Client) SendResponse(id string, result interface{}, errMsg string) error {
	resp := &RPCResponse{ID: id}
	if errMsg != "" {
		resp.Error = errMsg
	} else {
		resp.Result = result
	}
	return c.enqueue(&WSMessage{Kind: "rpc_response", Response: resp})
}

func (c *Client) enqueue(msg *WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// The closed check and the send share the lock so Close cannot
	// tear the channel down between them.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrClientBufferFull
	}
}

// writeLoop drains the outbound queue onto the socket. It exits when
// Close is called or a write fails, closing the connection either way.
func (c *Client) writeLoop() {
	defer c.conn.Close()
	for data := range c.out {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readLoop feeds inbound frames to handle until the peer disconnects.
// It runs on the caller's goroutine.
func (c *Client) readLoop(handle func([]byte)) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		handle(data)
	}
}

// Close stops the write loop and fails later sends with
// ErrClientClosed. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}
