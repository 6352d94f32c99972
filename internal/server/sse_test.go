package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentry-ai/agentry/internal/event"
)

// mockResponseWriter counts flushes for testing
type mockResponseWriter struct {
	*httptest.ResponseRecorder
	flushed int
}

func (m *mockResponseWriter) Flush() {
	m.flushed++
}

func newMockResponseWriter() *mockResponseWriter {
	return &mockResponseWriter{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

func TestNewSSEWriter(t *testing.T) {
	w := newMockResponseWriter()
	sse, err := newSSEWriter(w)
	if err != nil {
		t.Fatalf("newSSEWriter failed: %v", err)
	}
	if sse == nil {
		t.Fatal("SSE writer should not be nil")
	}
}

func TestNewSSEWriter_NoFlusher(t *testing.T) {
	// Use a writer that doesn't implement Flusher
	w := &noFlushWriter{}
	_, err := newSSEWriter(w)
	if err == nil {
		t.Error("Expected error for writer without Flusher")
	}
}

type noFlushWriter struct{}

func (n *noFlushWriter) Header() http.Header       { return http.Header{} }
func (n *noFlushWriter) Write([]byte) (int, error) { return 0, nil }
func (n *noFlushWriter) WriteHeader(int)           {}

func TestSSEWriter_WriteEvent(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	frame := sseEvent{Type: event.RunStarted, Data: event.RunStartedData{RunID: "run-1"}}
	err := sse.writeEvent("message", frame)
	if err != nil {
		t.Fatalf("writeEvent failed: %v", err)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: message\n") {
		t.Error("Expected event line")
	}
	if !strings.Contains(body, `"type":"run.started"`) {
		t.Errorf("Expected event type in data, got: %s", body)
	}
	if !strings.Contains(body, `"run_id":"run-1"`) {
		t.Errorf("Expected run id in data, got: %s", body)
	}
	if w.flushed == 0 {
		t.Error("Expected Flush to be called")
	}
}

func TestSSEWriter_WriteHeartbeat(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	sse.writeHeartbeat()

	body := w.Body.String()
	if !strings.Contains(body, ": heartbeat\n") {
		t.Errorf("Expected heartbeat comment, got: %s", body)
	}
	if w.flushed == 0 {
		t.Error("Expected Flush to be called")
	}
}

// syncResponseWriter is safe to read while the events handler writes to it
// from another goroutine.
type syncResponseWriter struct {
	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	status  int
	flushed int
}

func newSyncResponseWriter() *syncResponseWriter {
	return &syncResponseWriter{header: http.Header{}}
}

func (s *syncResponseWriter) Header() http.Header { return s.header }

func (s *syncResponseWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body.Write(p)
}

func (s *syncResponseWriter) WriteHeader(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *syncResponseWriter) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed++
}

func (s *syncResponseWriter) bodyString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body.String()
}

func TestEvents_StreamsRuntimeEvents(t *testing.T) {
	event.Reset()
	t.Cleanup(event.Reset)

	srv, _ := setupTestServer(t, nil)

	w := newSyncResponseWriter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		srv.events(w, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(w.bodyString(), "server.connected") {
		if time.Now().After(deadline) {
			t.Fatalf("No connected frame, body: %s", w.bodyString())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", got)
	}

	// The subscription races the connected frame, so keep publishing
	// until a frame makes it through.
	started := event.Event{
		Type: event.RunStarted,
		Data: event.RunStartedData{RunID: "run-1", AgentID: "alpha", Version: "v2"},
	}
	for !strings.Contains(w.bodyString(), "run.started") {
		if time.Now().After(deadline) {
			t.Fatalf("No run.started frame, body: %s", w.bodyString())
		}
		event.Publish(started)
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Handler did not stop on context cancel")
	}
}
