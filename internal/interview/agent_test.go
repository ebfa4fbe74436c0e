package interview

import (
	"context"
	"strings"
	"testing"

	"github.com/sfinx-hq/iris/internal/backend"
)

func TestProvideHintLevels(t *testing.T) {
	a := NewAgent(nil, "abc123")

	cases := []struct {
		name  string
		level HintLevel
		want  string
	}{
		{"gentle", HintGentle, "subtle nudge"},
		{"moderate", HintModerate, "more specific guidance"},
		{"strong", HintStrong, "substantial help"},
		{"unknown falls back to gentle", HintLevel("unknown-level"), "subtle nudge"},
		{"empty falls back to gentle", HintLevel(""), "subtle nudge"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.ProvideHint(tc.level)
			if !strings.Contains(got, tc.want) {
				t.Fatalf("ProvideHint(%q) = %q, want substring %q", tc.level, got, tc.want)
			}
			if !strings.HasPrefix(got, "[Internal:") {
				t.Fatalf("ProvideHint(%q) = %q, want internal steering marker", tc.level, got)
			}
		})
	}
}

func TestSummarizeProgress(t *testing.T) {
	a := NewAgent(nil, "abc123")
	got := a.SummarizeProgress()
	if !strings.Contains(got, "Summarize what the candidate has accomplished") {
		t.Fatalf("SummarizeProgress() = %q, want progress instruction", got)
	}
}

func TestRequestCodeReviewEchoesFocusArea(t *testing.T) {
	a := NewAgent(nil, "abc123")

	for _, focus := range []string{"logic", "edge_cases", "time_complexity", "space_complexity", "readability", "anything-else"} {
		got := a.RequestCodeReview(focus)
		if !strings.Contains(got, focus) {
			t.Fatalf("RequestCodeReview(%q) = %q, want focus echoed", focus, got)
		}
	}
}

func TestAgentInstructionsComposition(t *testing.T) {
	ctx := &backend.InterviewContext{SystemPrompt: "Interview for Two Sum."}
	a := NewAgent(ctx, "abc123")

	if !strings.HasPrefix(a.Instructions(), "Interview for Two Sum.") {
		t.Fatalf("Instructions() = %q, want backend prompt first", a.Instructions())
	}
	if a.InterviewID() != "abc123" {
		t.Fatalf("InterviewID() = %q, want %q", a.InterviewID(), "abc123")
	}
}

func TestToolsInvokeGuidanceActions(t *testing.T) {
	a := NewAgent(nil, "abc123")
	tools := a.Tools()
	if len(tools) != 3 {
		t.Fatalf("Tools() returned %d definitions, want 3", len(tools))
	}

	byName := map[string]func(context.Context, map[string]string) (string, error){}
	for _, tool := range tools {
		byName[tool.Name] = tool.Handler
	}

	hint, err := byName["provide_hint"](context.Background(), map[string]string{"hint_level": "strong"})
	if err != nil {
		t.Fatalf("provide_hint handler error = %v", err)
	}
	if !strings.Contains(hint, "substantial help") {
		t.Fatalf("provide_hint handler = %q, want strong guidance", hint)
	}

	review, err := byName["request_code_review"](context.Background(), map[string]string{"focus_area": "edge_cases"})
	if err != nil {
		t.Fatalf("request_code_review handler error = %v", err)
	}
	if !strings.Contains(review, "edge_cases") {
		t.Fatalf("request_code_review handler = %q, want focus echoed", review)
	}

	if _, err := byName["summarize_progress"](context.Background(), nil); err != nil {
		t.Fatalf("summarize_progress handler error = %v", err)
	}
}
