// Package sse is a small pub/sub hub fanning run events out to Server-Sent Events clients.
package sse

import (
	"fmt"
	"io"
	"sync"
)

// Hub routes messages by run id.
type Hub struct {
	mu    sync.Mutex
	conns map[string][]chan string
}

func NewHub() *Hub {
	return &Hub{conns: map[string][]chan string{}}
}

// Subscribe registers a client for id and returns its channel and an unsubscribe func.
func (h *Hub) Subscribe(id string) (<-chan string, func()) {
	ch := make(chan string, 16)

	h.mu.Lock()
	h.conns[id] = append(h.conns[id], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.conns[id]
		for i, c := range list {
			if c == ch {
				h.conns[id] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(h.conns[id]) == 0 {
			delete(h.conns, id)
		}
	}

	return ch, cancel
}

// Publish sends msg to every subscriber of id. Slow subscribers miss messages.
func (h *Hub) Publish(id, msg string) {
	h.mu.Lock()
	list := append([]chan string(nil), h.conns[id]...)
	h.mu.Unlock()

	for _, ch := range list {
		select {
		case ch <- msg:
		default:
			// buffer full
		}
	}
}

// Subscribers returns the number of clients listening on id.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[id])
}

// WriteEvent writes one SSE frame.
func WriteEvent(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
