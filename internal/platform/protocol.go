package platform

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies worker-link payload variants.
type MessageType string

const (
	TypeRegister      MessageType = "register"
	TypeRegistered    MessageType = "registered"
	TypeJobAssignment MessageType = "job_assignment"
	TypeJobUpdate     MessageType = "job_update"
	TypePing          MessageType = "ping"
	TypePong          MessageType = "pong"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// Register announces this worker and its capabilities to the platform.
type Register struct {
	Type         MessageType  `json:"type"`
	AgentName    string       `json:"agent_name"`
	Capabilities Capabilities `json:"capabilities"`
}

type Capabilities struct {
	PrewarmVAD bool `json:"prewarm_vad"`
}

type Registered struct {
	Type     MessageType `json:"type"`
	WorkerID string      `json:"worker_id"`
}

// JobAssignment dispatches this worker into a room.
type JobAssignment struct {
	Type     MessageType `json:"type"`
	JobID    string      `json:"job_id"`
	RoomName string      `json:"room_name"`
}

// JobUpdate reports job progress back to the platform.
type JobUpdate struct {
	Type   MessageType `json:"type"`
	JobID  string      `json:"job_id"`
	Status string      `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

type Ping struct {
	Type MessageType `json:"type"`
	TSMs int64       `json:"ts_ms"`
}

type Pong struct {
	Type MessageType `json:"type"`
	TSMs int64       `json:"ts_ms"`
}

// ParseServerMessage decodes a platform-to-worker payload.
func ParseServerMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeRegistered:
		var msg Registered
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeJobAssignment:
		var msg JobAssignment
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.JobID == "" || msg.RoomName == "" {
			return nil, errors.New("invalid job_assignment")
		}
		return msg, nil
	case TypePing:
		var msg Ping
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
