package interview

import (
	"context"
	"log"
	"os"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/platform"
)

// HintLevel controls how much a hint reveals.
type HintLevel string

const (
	HintGentle   HintLevel = "gentle"
	HintModerate HintLevel = "moderate"
	HintStrong   HintLevel = "strong"
)

var hintGuidance = map[HintLevel]string{
	HintGentle:   "Give a subtle nudge without revealing the solution approach",
	HintModerate: "Provide more specific guidance about the approach to consider",
	HintStrong:   "Give substantial help but still let them implement it",
}

// Agent is the conversational policy for one interview session. It holds
// the composed instructions and exposes guidance actions to the platform's
// model tooling. The guidance strings are internal steering text for the
// model's next turn; they are never spoken verbatim.
type Agent struct {
	interviewID  string
	instructions string
	logger       *log.Logger
}

// NewAgent builds the interviewer for one session. interviewID may be empty
// when the room name carried no identifier; ctx may be nil when the backend
// had no context, in which case the default interview prompt is used.
func NewAgent(ctx *backend.InterviewContext, interviewID string) *Agent {
	a := &Agent{
		interviewID:  interviewID,
		instructions: ComposeInstructions(ctx),
		logger:       log.New(os.Stderr, "interviewer: ", log.LstdFlags),
	}
	id := interviewID
	if id == "" {
		id = "unknown"
	}
	a.logger.Printf("interviewer initialized for interview %s", id)
	return a
}

func (a *Agent) InterviewID() string  { return a.interviewID }
func (a *Agent) Instructions() string { return a.instructions }

// ProvideHint returns steering text for a progressive hint. Unrecognized
// levels fall back to gentle.
func (a *Agent) ProvideHint(level HintLevel) string {
	guidance, ok := hintGuidance[level]
	if !ok {
		guidance = hintGuidance[HintGentle]
	}
	a.logger.Printf("providing %s hint for interview %s", level, a.interviewID)
	return "[Internal: " + guidance + "]"
}

// SummarizeProgress returns steering text asking the model to recap what
// the candidate has done so far.
func (a *Agent) SummarizeProgress() string {
	a.logger.Printf("summarizing progress for interview %s", a.interviewID)
	return "[Internal: Summarize what the candidate has accomplished and what's left]"
}

// RequestCodeReview returns steering text asking the candidate to walk
// through their code. The focus area is echoed unvalidated; the model is
// free to pass anything descriptive.
func (a *Agent) RequestCodeReview(focusArea string) string {
	a.logger.Printf("requesting code review for %s in interview %s", focusArea, a.interviewID)
	return "[Internal: Ask candidate to explain their code focusing on " + focusArea + "]"
}

// Tools exposes the guidance actions as platform tool definitions.
func (a *Agent) Tools() []platform.ToolDefinition {
	return []platform.ToolDefinition{
		{
			Name:        "provide_hint",
			Description: "Provide a progressive hint when the candidate is stuck.",
			Parameters: []platform.ToolParameter{
				{
					Name:        "hint_level",
					Description: "How much to reveal.",
					Enum:        []string{string(HintGentle), string(HintModerate), string(HintStrong)},
				},
			},
			Handler: func(_ context.Context, args map[string]string) (string, error) {
				return a.ProvideHint(HintLevel(args["hint_level"])), nil
			},
		},
		{
			Name:        "summarize_progress",
			Description: "Summarize the candidate's progress so far.",
			Handler: func(_ context.Context, _ map[string]string) (string, error) {
				return a.SummarizeProgress(), nil
			},
		},
		{
			Name:        "request_code_review",
			Description: "Ask the candidate to walk through their code.",
			Parameters: []platform.ToolParameter{
				{
					Name:        "focus_area",
					Description: "Aspect to probe.",
					Enum:        []string{"logic", "edge_cases", "time_complexity", "space_complexity", "readability"},
				},
			},
			Handler: func(_ context.Context, args map[string]string) (string, error) {
				return a.RequestCodeReview(args["focus_area"]), nil
			},
		},
	}
}
