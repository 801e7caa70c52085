package services

import (
	"sync"
	"testing"
)

func TestBroadcastToUserEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	// Unbuffered channel with no reader: the send can never proceed.
	stalled := &Client{ID: 7, Send: make(chan []byte), Hub: hub}
	healthy := &Client{ID: 7, Send: make(chan []byte, 4), Hub: hub}
	hub.clients[stalled] = true
	hub.clients[healthy] = true

	hub.BroadcastToUser(7, []byte(`{"type":"ride_started"}`))

	if _, ok := hub.clients[stalled]; ok {
		t.Error("stalled client still registered after broadcast")
	}
	if _, ok := hub.clients[healthy]; !ok {
		t.Error("healthy client was evicted")
	}
	select {
	case msg := <-healthy.Send:
		if len(msg) == 0 {
			t.Error("healthy client received empty message")
		}
	default:
		t.Error("healthy client did not receive the message")
	}
	// The channel must be closed so the client's write pump exits.
	select {
	case _, open := <-stalled.Send:
		if open {
			t.Error("stalled client channel delivered instead of closing")
		}
	default:
		t.Error("stalled client channel left open")
	}
	if n := hub.GetConnectedClients(); n != 1 {
		t.Errorf("connected clients = %d, want 1", n)
	}
}

func TestBroadcastToUserConcurrentEviction(t *testing.T) {
	hub := NewHub()
	stalled := &Client{ID: 3, Send: make(chan []byte), Hub: hub}
	hub.clients[stalled] = true

	// Competing broadcasts against a full channel must agree on a single
	// eviction; a second close of the same channel would panic.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.BroadcastToUser(3, []byte(`{"type":"ride_cancelled"}`))
		}()
	}
	wg.Wait()

	if n := hub.GetConnectedClients(); n != 0 {
		t.Errorf("connected clients = %d, want 0", n)
	}
}
