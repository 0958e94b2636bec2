package services

import "sync"

type WSEvent struct {
	Type        string `json:"type"` // video.completed, video.failed or video.cancelled
	JobID       string `json:"jobId"`
	Status      string `json:"status"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*WSClient
}

func safeCloseBytes(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func NewHub() *Hub {
	return &Hub{
		clients: map[string]*WSClient{},
	}
}

func (h *Hub) Add(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[c.id]; ok {
		safeCloseBytes(old.send)
		old.close()
	}

	h.clients[c.id] = c
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		safeCloseBytes(c.send)
		c.close()
	}
}

// RemoveClient only removes c if it is still the registered client for its
// id, so a replaced connection cannot evict its successor.
func (h *Hub) RemoveClient(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
		safeCloseBytes(c.send)
		c.close()
	}
}

func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		safeCloseBytes(c.send)
		c.close()
	}
	h.clients = map[string]*WSClient{}
}

func (h *Hub) SendTo(clientId string, event WSEvent) {
	// send channels are only closed under the write lock, so the
	// non-blocking enqueue has to happen while the read lock is held
	h.mu.RLock()
	c := h.clients[clientId]
	queued := c == nil || c.enqueue(event)
	h.mu.RUnlock()

	if !queued {
		h.RemoveClient(c)
	}
}

// Connected reports how many clients are subscribed.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
