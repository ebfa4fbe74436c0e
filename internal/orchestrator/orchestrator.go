package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/config"
	"github.com/sfinx-hq/iris/internal/interview"
	"github.com/sfinx-hq/iris/internal/observability"
	"github.com/sfinx-hq/iris/internal/platform"
	"github.com/sfinx-hq/iris/internal/transcript"
)

// State tracks a session through its lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateResolvingContext State = "resolving_context"
	StateActive           State = "active"
	StateEnded            State = "ended"
)

// Session is the coordinator for one dispatched room.
type Session struct {
	ID          string
	RoomName    string
	InterviewID string

	mu    sync.Mutex
	state State
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
}

// Orchestrator runs interview sessions: one room dispatch in, one managed
// conversation session out, with transcript fan-out on the side. Every
// backend failure degrades to "proceed without that piece"; there is no
// fatal path between resolving a room and ending its session.
type Orchestrator struct {
	client    *backend.Client
	provider  platform.SessionProvider
	archive   transcript.Store
	metrics   *observability.Metrics
	agentName string
	pipeline  config.PipelineConfig

	queueSize    int
	writeTimeout time.Duration
	drainTimeout time.Duration

	logger *log.Logger
}

func New(
	client *backend.Client,
	provider platform.SessionProvider,
	archive transcript.Store,
	metrics *observability.Metrics,
	agentName string,
	pipeline config.PipelineConfig,
	queueSize int,
	writeTimeout time.Duration,
	drainTimeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		client:       client,
		provider:     provider,
		archive:      archive,
		metrics:      metrics,
		agentName:    agentName,
		pipeline:     pipeline,
		queueSize:    queueSize,
		writeTimeout: writeTimeout,
		drainTimeout: drainTimeout,
		logger:       log.New(os.Stderr, "orchestrator: ", log.LstdFlags),
	}
}

// HandleJob runs one room dispatch to completion: resolve the interview,
// load context, start the managed session and mirror its turns until the
// session ends or ctx is cancelled.
func (o *Orchestrator) HandleJob(ctx context.Context, job platform.Job) error {
	s := &Session{
		ID:       uuid.NewString(),
		RoomName: job.RoomName,
		state:    StateIdle,
	}
	o.logger.Printf("agent joining room %s (job %s)", job.RoomName, job.ID)

	s.transition(StateResolvingContext)

	var interviewCtx *backend.InterviewContext
	if id, ok := interview.InterviewIDFromRoom(job.RoomName); ok {
		s.InterviewID = id
		interviewCtx, _ = o.client.FetchContext(ctx, id)
		if interviewCtx == nil {
			o.logger.Printf("no context for interview %s, using default prompt", id)
		}
	} else {
		o.logger.Printf("room %s carries no interview id", job.RoomName)
	}

	agent := interview.NewAgent(interviewCtx, s.InterviewID)

	writer := newTranscriptWriter(o.client, o.archive, o.metrics, o.queueSize, o.writeTimeout)

	sess, items, err := o.provider.StartSession(ctx, job.RoomName, platform.AgentDescriptor{
		Name:         o.agentName,
		Instructions: agent.Instructions(),
		Tools:        agent.Tools(),
	}, platform.SessionConfig{
		Pipeline:          o.pipeline,
		NoiseCancellation: platform.NoiseCancellationFor,
	})
	if err != nil {
		o.drain(writer)
		s.transition(StateEnded)
		return fmt.Errorf("start session for room %s: %w", job.RoomName, err)
	}

	s.transition(StateActive)
	if o.metrics != nil {
		o.metrics.ActiveSessions.Inc()
		o.metrics.SessionEvents.WithLabelValues("started").Inc()
	}
	o.logger.Printf("interview session started for room %s", job.RoomName)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case item, ok := <-items:
			if !ok {
				break loop
			}
			o.handleItem(s, writer, item)
		}
	}

	_ = sess.Close()
	o.drain(writer)
	s.transition(StateEnded)
	if o.metrics != nil {
		o.metrics.ActiveSessions.Dec()
		o.metrics.SessionEvents.WithLabelValues("ended").Inc()
	}
	o.logger.Printf("interview session ended for room %s", job.RoomName)
	return nil
}

// handleItem mirrors one committed turn. Turns without textual content or
// without a known interview id are skipped.
func (o *Orchestrator) handleItem(s *Session, writer *transcriptWriter, item platform.ConversationItem) {
	if s.InterviewID == "" {
		return
	}

	role := platform.RoleAssistant
	if item.Role == platform.RoleUser {
		role = platform.RoleUser
	}

	content := platform.FlattenContent(item.Content)
	if content == "" {
		return
	}

	writer.Enqueue(s.InterviewID, role, content)
}

func (o *Orchestrator) drain(writer *transcriptWriter) {
	drainCtx, cancel := context.WithTimeout(context.Background(), o.drainTimeout)
	defer cancel()
	if err := writer.Drain(drainCtx); err != nil && o.metrics != nil {
		o.metrics.SessionEvents.WithLabelValues("drain_timeout").Inc()
	}
}
