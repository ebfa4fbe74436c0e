package orchestrator

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/observability"
	"github.com/sfinx-hq/iris/internal/transcript"
)

type writeRequest struct {
	interviewID string
	role        string
	content     string
}

// transcriptWriter fans committed turns out to the backend through a bounded
// queue. A single worker drains the queue, so writes are issued in commit
// order; the backend still observes each POST independently, so completion
// order across writes is not guaranteed. A full queue drops the write with a
// log and a metric rather than blocking the conversation.
type transcriptWriter struct {
	client       *backend.Client
	archive      transcript.Store
	metrics      *observability.Metrics
	writeTimeout time.Duration
	logger       *log.Logger

	mu     sync.Mutex
	queue  chan writeRequest
	closed bool
	done   chan struct{}
}

func newTranscriptWriter(client *backend.Client, archive transcript.Store, metrics *observability.Metrics, queueSize int, writeTimeout time.Duration) *transcriptWriter {
	if queueSize <= 0 {
		queueSize = 64
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	w := &transcriptWriter{
		client:       client,
		archive:      archive,
		metrics:      metrics,
		writeTimeout: writeTimeout,
		logger:       log.New(os.Stderr, "transcript: ", log.LstdFlags),
		queue:        make(chan writeRequest, queueSize),
		done:         make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *transcriptWriter) run() {
	defer close(w.done)
	for req := range w.queue {
		if w.metrics != nil {
			w.metrics.TranscriptQueueDepth.Dec()
		}
		w.store(req)
	}
}

func (w *transcriptWriter) store(req writeRequest) {
	// Writes keep their own deadline so an in-flight write survives session
	// cancellation up to the drain grace.
	ctx, cancel := context.WithTimeout(context.Background(), w.writeTimeout)
	defer cancel()

	outcome := w.client.StoreTranscript(ctx, req.interviewID, req.role, req.content)
	if !outcome.OK() {
		// Already logged and counted by the client; nothing to retry.
		return
	}

	if w.archive != nil {
		if err := w.archive.SaveTurn(ctx, transcript.TurnRecord{
			ID:          uuid.NewString(),
			InterviewID: req.interviewID,
			Role:        req.role,
			Content:     req.content,
		}); err != nil {
			w.logger.Printf("archive save failed for interview %s: %v", req.interviewID, err)
		}
	}
}

// Enqueue schedules one turn for persistence. It never blocks: when the
// queue is full or the writer is draining, the turn is dropped with a log.
func (w *transcriptWriter) Enqueue(interviewID, role, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.drop(interviewID, role, "writer draining")
		return
	}
	select {
	case w.queue <- writeRequest{interviewID: interviewID, role: role, content: content}:
		if w.metrics != nil {
			w.metrics.TranscriptQueueDepth.Inc()
		}
	default:
		w.drop(interviewID, role, "queue full")
	}
}

func (w *transcriptWriter) drop(interviewID, role, reason string) {
	if w.metrics != nil {
		w.metrics.TranscriptDropped.Inc()
	}
	w.logger.Printf("dropping %s turn for interview %s: %s", role, interviewID, reason)
}

// Drain stops intake and waits for queued writes to finish, up to the
// context deadline. Writes still pending past the deadline are abandoned.
func (w *transcriptWriter) Drain(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Printf("drain grace expired with writes pending")
		return ctx.Err()
	}
}
