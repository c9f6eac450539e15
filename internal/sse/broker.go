// Package sse streams workspace changes to browser tabs as Server-Sent
// Events so several open windows stay in step.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ashval/inkweaver/internal/workspace"
)

// GraphEvent is broadcast, throttled, after changes that can alter the lore
// graph.
const GraphEvent = "graph.updated"

// ExternalEvent tells clients the workspace was changed by another process
// and should be re-fetched.
const ExternalEvent = "workspace.external"

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ChangeData is the payload of a <collection>.<kind> event.
type ChangeData struct {
	Collection string `json:"collection"`
	ID         string `json:"id,omitempty"`
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + graph throttle timestamp). Public methods communicate with this loop
// through channels, so no mutexes are required.
type Broker struct {
	graphMin  time.Duration
	keepAlive time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan workspace.Change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given graph throttle interval
// and keep-alive period (zero disables keep-alive comments).
func NewBroker(graphThrottle, keepAlive time.Duration) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}

	b := &Broker{
		graphMin:      graphThrottle,
		keepAlive:     keepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan workspace.Change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastGraph time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case c := <-b.changeCh:
			broadcast(Event{
				Type: EventType(c),
				Data: ChangeData{Collection: string(c.Collection), ID: c.ID},
			})

			if !affectsGraph(c) {
				continue
			}
			now := time.Now()
			if now.Sub(lastGraph) >= b.graphMin {
				lastGraph = now
				broadcast(Event{Type: GraphEvent, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes a workspace change as a <collection>.<kind>
// event, followed by a throttled graph.updated when the lore graph may have
// changed. Its signature matches workspace.Store.Subscribe.
func (b *Broker) PublishChange(c workspace.Change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- c:
	case <-b.stopped:
	}
}

// EventType names the SSE event for c, e.g. "note.updated".
func EventType(c workspace.Change) string {
	return string(c.Collection) + "." + string(c.Kind)
}

// affectsGraph reports whether c can change lore nodes, their edges or the
// project scope the graph is drawn in.
func affectsGraph(c workspace.Change) bool {
	switch c.Collection {
	case workspace.CollectionLore, workspace.CollectionProject, workspace.CollectionWorkspace:
		return true
	case workspace.CollectionPreferences:
		return c.ID == "activeProject"
	}
	return false
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var ping <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		ping = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
