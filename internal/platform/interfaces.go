package platform

import (
	"context"

	"github.com/sfinx-hq/iris/internal/config"
)

// Role identifies the speaker of a conversation item.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationItem is one committed turn delivered by the managed session.
// Content arrives either as a plain string or as an ordered list of parts;
// FlattenContent extracts the spoken text.
type ConversationItem struct {
	Role    string
	Content any
}

// ToolHandler executes a tool call made by the platform's LLM layer and
// returns internal steering text for the model's next generation step.
type ToolHandler func(ctx context.Context, args map[string]string) (string, error)

// ToolParameter describes one argument of a tool.
type ToolParameter struct {
	Name        string
	Description string
	Enum        []string
}

// ToolDefinition registers a callable with the platform's model tooling.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []ToolParameter
	Handler     ToolHandler
}

// AgentDescriptor attaches a conversational policy to a managed session.
type AgentDescriptor struct {
	Name         string
	Instructions string
	Tools        []ToolDefinition
}

// ParticipantKind distinguishes how a participant reached the room.
type ParticipantKind string

const (
	ParticipantStandard ParticipantKind = "standard"
	ParticipantSIP      ParticipantKind = "sip"
)

// NoiseCancellationMode names the platform-side filter applied to inbound
// audio.
type NoiseCancellationMode string

const (
	NoiseCancellationBVC          NoiseCancellationMode = "bvc"
	NoiseCancellationBVCTelephony NoiseCancellationMode = "bvc_telephony"
)

// NoiseCancellationFor picks the inbound filter per participant: telephony
// participants get the telephony-tuned variant.
func NoiseCancellationFor(kind ParticipantKind) NoiseCancellationMode {
	if kind == ParticipantSIP {
		return NoiseCancellationBVCTelephony
	}
	return NoiseCancellationBVC
}

// SessionConfig selects the platform-run pipeline components for a session.
type SessionConfig struct {
	Pipeline          config.PipelineConfig
	NoiseCancellation func(ParticipantKind) NoiseCancellationMode
}

// Session is a managed conversation session running on the platform.
type Session interface {
	Close() error
}

// SessionProvider starts managed sessions in platform rooms. The returned
// channel delivers committed conversation items until the session closes.
type SessionProvider interface {
	StartSession(ctx context.Context, roomName string, agent AgentDescriptor, cfg SessionConfig) (Session, <-chan ConversationItem, error)
}
