package orchestrator

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/transcript"
)

func newWriterBackend(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL, "test-key", time.Second, nil,
		backend.WithLogger(log.New(io.Discard, "", 0)))
}

func TestWriterDrainDeliversQueuedWrites(t *testing.T) {
	var posts atomic.Int32
	client := newWriterBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	archive := transcript.NewInMemoryStore()

	w := newTranscriptWriter(client, archive, nil, 8, time.Second)
	w.logger = log.New(io.Discard, "", 0)
	w.Enqueue("abc123", "user", "hello")
	w.Enqueue("abc123", "assistant", "hi, ready to start?")
	w.Enqueue("abc123", "user", "yes")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Drain(ctx); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	if n := posts.Load(); n != 3 {
		t.Fatalf("backend posts = %d, want 3", n)
	}
	turns, err := archive.Turns(context.Background(), "abc123", 0)
	if err != nil {
		t.Fatalf("Turns() error = %v", err)
	}
	if len(turns) != 3 || turns[0].Content != "hello" || turns[2].Content != "yes" {
		t.Fatalf("archive turns = %v, want the three enqueued turns in order", turns)
	}
}

func TestWriterFullQueueDropsInsteadOfBlocking(t *testing.T) {
	var posts atomic.Int32
	inFlight := make(chan struct{})
	release := make(chan struct{})
	client := newWriterBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		inFlight <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	})

	w := newTranscriptWriter(client, nil, nil, 1, time.Second)
	w.logger = log.New(io.Discard, "", 0)

	w.Enqueue("abc123", "user", "first")
	<-inFlight // worker is busy with the first write
	w.Enqueue("abc123", "user", "second") // fills the queue
	done := make(chan struct{})
	go func() {
		w.Enqueue("abc123", "user", "third") // queue full, must drop immediately
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(release)
	go func() { <-inFlight }() // let the second write through
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Drain(ctx); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if n := posts.Load(); n != 2 {
		t.Fatalf("backend posts = %d, want 2 (third turn dropped)", n)
	}
}

func TestWriterEnqueueAfterDrainDrops(t *testing.T) {
	var posts atomic.Int32
	client := newWriterBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	w := newTranscriptWriter(client, nil, nil, 8, time.Second)
	w.logger = log.New(io.Discard, "", 0)
	if err := w.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	w.Enqueue("abc123", "user", "too late") // must not panic or block
	time.Sleep(50 * time.Millisecond)
	if n := posts.Load(); n != 0 {
		t.Fatalf("backend posts = %d, want 0 after drain", n)
	}
}

func TestWriterDrainTimesOutWithStuckWrite(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	client := newWriterBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
	})

	w := newTranscriptWriter(client, nil, nil, 8, 5*time.Second)
	w.logger = log.New(io.Discard, "", 0)
	w.Enqueue("abc123", "user", "stuck")
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := w.Drain(ctx); err == nil {
		t.Fatal("Drain() = nil, want deadline error with a write still in flight")
	}
}
