package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashval/inkweaver/internal/workspace"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100*time.Millisecond, 0)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100*time.Millisecond, 0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "note.created", Data: map[string]string{"id": "n1"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"n1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChange_EventShape(t *testing.T) {
	b := NewBroker(time.Second, 0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange(workspace.Change{Collection: workspace.CollectionTask, Kind: workspace.Deleted, ID: "t9"})
	time.Sleep(50 * time.Millisecond)

	msgs := drain(ch)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (tasks do not touch the graph): %q", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], "event: task.deleted") || !strings.Contains(msgs[0], `"collection":"task","id":"t9"`) {
		t.Errorf("unexpected message %q", msgs[0])
	}
}

func TestPublishChange_GraphThrottle(t *testing.T) {
	b := NewBroker(500*time.Millisecond, 0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First lore change should trigger graph.updated.
	b.PublishChange(workspace.Change{Collection: workspace.CollectionLore, Kind: workspace.Created, ID: "a"})
	// Second immediately should NOT trigger another graph.updated.
	b.PublishChange(workspace.Change{Collection: workspace.CollectionLore, Kind: workspace.Updated, ID: "b"})
	// Switching the active project rescopes the graph, still throttled.
	b.PublishChange(workspace.Change{Collection: workspace.CollectionPreferences, Kind: workspace.Updated, ID: "activeProject"})

	time.Sleep(50 * time.Millisecond)
	graphCount, changeCount := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, GraphEvent) {
			graphCount++
		} else {
			changeCount++
		}
	}

	if changeCount != 3 {
		t.Errorf("change events = %d, want 3", changeCount)
	}
	if graphCount != 1 {
		t.Errorf("graph events = %d, want 1 (throttled)", graphCount)
	}
}

func TestStoreSubscription(t *testing.T) {
	b := NewBroker(time.Second, 0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	store := workspace.Open()
	unsubscribe := store.Subscribe(b.PublishChange)
	defer unsubscribe()

	if _, err := store.CreateProject(context.Background(), workspace.ProjectInput{Name: "Ashval"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	msgs := strings.Join(drain(ch), "")
	if !strings.Contains(msgs, "event: project.created") {
		t.Errorf("missing project.created in %q", msgs)
	}
	if !strings.Contains(msgs, "event: "+GraphEvent) {
		t.Errorf("missing graph event in %q", msgs)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, 20*time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: "note.updated", Data: map[string]string{"id": "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: note.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if !strings.Contains(body, ": ping") {
		t.Errorf("handler output missing keep-alive: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second, 0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100*time.Millisecond, 0)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "note.updated", Data: map[string]string{"id": "x"}})
	b.PublishChange(workspace.Change{Collection: workspace.CollectionNote, Kind: workspace.Updated, ID: "x"})
}
