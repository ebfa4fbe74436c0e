package interview

import (
	"strings"
	"testing"

	"github.com/sfinx-hq/iris/internal/backend"
)

func TestComposeInstructionsWithSystemPrompt(t *testing.T) {
	ctx := &backend.InterviewContext{SystemPrompt: "You are interviewing for Two Sum."}

	got := ComposeInstructions(ctx)
	want := "You are interviewing for Two Sum." + voiceAdaptationPrompt
	if got != want {
		t.Fatalf("ComposeInstructions() = %q, want systemPrompt + voice suffix", got)
	}
}

func TestComposeInstructionsFallsBackToDefault(t *testing.T) {
	cases := []struct {
		name string
		ctx  *backend.InterviewContext
	}{
		{"nil context", nil},
		{"empty system prompt", &backend.InterviewContext{SystemPrompt: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComposeInstructions(tc.ctx)
			if got != defaultInterviewPrompt+voiceAdaptationPrompt {
				t.Fatalf("ComposeInstructions() = %q, want default + voice suffix", got)
			}
			if !strings.Contains(got, "VOICE conversation") {
				t.Fatalf("default prompt missing voice conduct rules")
			}
		})
	}
}
