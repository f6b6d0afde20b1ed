package broadcast

import (
	"encoding/json"
	"errors"
	"sync"
)

var (
	ErrClosed     = errors.New("outbox closed")
	ErrOutboxFull = errors.New("outbox full")
)

// Client is the outbound queue of one participant. Enqueue never blocks;
// the connection's writer drains Messages until the queue is closed.
type Client struct {
	ID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(id string, size int) *Client {
	if size < 1 {
		size = 1
	}
	return &Client{ID: id, send: make(chan []byte, size)}
}

func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Enqueue queues an already encoded frame.
func (c *Client) Enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrOutboxFull
	}
}

func (c *Client) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Enqueue(data)
}

// Close closes the queue. Frames already queued are still delivered.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
