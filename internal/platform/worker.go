package platform

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sfinx-hq/iris/internal/observability"
)

// Job is one room dispatch received from the platform.
type Job struct {
	ID       string
	RoomName string
}

// JobHandler runs one dispatched job to completion. Returning an error marks
// the job failed on the platform; the worker link itself stays up.
type JobHandler func(ctx context.Context, job Job) error

// WorkerConfig configures the platform control link.
type WorkerConfig struct {
	URL        string
	APIKey     string
	AgentName  string
	PrewarmVAD bool
}

// Worker maintains the websocket link to the platform: it registers the
// agent, receives job assignments, answers pings and reconnects with capped
// exponential backoff.
type Worker struct {
	cfg     WorkerConfig
	handler JobHandler
	metrics *observability.Metrics
	logger  *log.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	active sync.WaitGroup
}

func NewWorker(cfg WorkerConfig, handler JobHandler, metrics *observability.Metrics) *Worker {
	return &Worker{
		cfg:     cfg,
		handler: handler,
		metrics: metrics,
		logger:  log.New(os.Stderr, "worker: ", log.LstdFlags),
	}
}

const (
	reconnectBase = time.Second
	reconnectCap  = 30 * time.Second
	writeTimeout  = 10 * time.Second
)

// Run connects to the platform and serves job assignments until ctx is
// cancelled. It returns only on cancellation; connection failures trigger a
// reconnect instead.
func (w *Worker) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			w.active.Wait()
			return err
		}

		err := w.runConnection(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			w.active.Wait()
			return ctx.Err()
		}

		delay := reconnectDelay(attempt)
		attempt++
		w.logger.Printf("platform link lost (%v), reconnecting in %s", err, delay)
		select {
		case <-ctx.Done():
			w.active.Wait()
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (w *Worker) runConnection(ctx context.Context) error {
	header := http.Header{}
	if w.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, w.cfg.URL, header)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.writeJSON(Register{
		Type:         TypeRegister,
		AgentName:    w.cfg.AgentName,
		Capabilities: Capabilities{PrewarmVAD: w.cfg.PrewarmVAD},
	}); err != nil {
		return err
	}

	// Unblock the read loop when the caller shuts down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		msg, err := ParseServerMessage(raw)
		if err != nil {
			if errors.Is(err, ErrUnsupportedType) {
				continue
			}
			w.logger.Printf("bad platform message: %v", err)
			continue
		}

		switch m := msg.(type) {
		case Registered:
			w.logger.Printf("registered with platform as %s (worker %s)", w.cfg.AgentName, m.WorkerID)
		case Ping:
			_ = w.writeJSON(Pong{Type: TypePong, TSMs: m.TSMs})
		case JobAssignment:
			w.dispatch(ctx, Job{ID: m.JobID, RoomName: m.RoomName})
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, job Job) {
	if w.metrics != nil {
		w.metrics.SessionEvents.WithLabelValues("job_assigned").Inc()
	}
	_ = w.writeJSON(JobUpdate{Type: TypeJobUpdate, JobID: job.ID, Status: "accepted"})

	w.active.Add(1)
	go func() {
		defer w.active.Done()
		if err := w.handler(ctx, job); err != nil {
			if w.metrics != nil {
				w.metrics.SessionEvents.WithLabelValues("job_failed").Inc()
			}
			_ = w.writeJSON(JobUpdate{Type: TypeJobUpdate, JobID: job.ID, Status: "failed", Detail: err.Error()})
			return
		}
		if w.metrics != nil {
			w.metrics.SessionEvents.WithLabelValues("job_completed").Inc()
		}
		_ = w.writeJSON(JobUpdate{Type: TypeJobUpdate, JobID: job.ID, Status: "completed"})
	}()
}

func (w *Worker) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return errors.New("not connected")
	}
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteJSON(v)
}

// reconnectDelay computes a deterministic capped backoff duration.
func reconnectDelay(attempt int) time.Duration {
	d := reconnectBase
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= reconnectCap {
			return reconnectCap
		}
	}
	return d
}
