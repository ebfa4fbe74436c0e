package backend

import "encoding/json"

// InterviewContext is the backend-supplied bundle for one interview:
// the pre-formatted interviewer prompt, a snapshot of the coding problem,
// any prior chat history, and the interview status. The problem snapshot
// and prior messages are opaque to this worker.
type InterviewContext struct {
	SystemPrompt     string          `json:"systemPrompt"`
	ProblemSnapshot  json.RawMessage `json:"problemSnapshot"`
	ExistingMessages json.RawMessage `json:"existingMessages"`
	Status           string          `json:"status"`
}

// transcriptEntry is the POST body for a single stored turn.
type transcriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
