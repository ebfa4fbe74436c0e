package transcript

import (
	"context"
	"time"
)

// TurnRecord is one committed user or assistant turn mirrored locally.
type TurnRecord struct {
	ID          string    `json:"id"`
	InterviewID string    `json:"interview_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store archives conversation turns per interview. The archive is
// best-effort: the live conversation never waits on it.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	Turns(ctx context.Context, interviewID string, limit int) ([]TurnRecord, error)
	Close() error
}
