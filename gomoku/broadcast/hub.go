package broadcast

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub fans a frame out to every registered client. A client whose queue is
// full is dropped from the hub and its queue closed, which makes its writer
// close the socket and run the normal leave path.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
}

// Unregister removes the client and closes its queue.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish encodes v once and queues it for every client. It returns the IDs
// of clients dropped because their queue overflowed.
func (h *Hub) Publish(v any) ([]string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	var dropped []string
	for id, c := range h.clients {
		if err := c.Enqueue(data); err != nil {
			h.logger.Warn("Dropping slow client", zap.String("ConnID", id), zap.Error(err))
			delete(h.clients, id)
			c.Close()
			dropped = append(dropped, id)
		}
	}
	return dropped, nil
}

// CloseAll closes every queue; used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}
