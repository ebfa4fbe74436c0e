package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/transcript"
)

func newTestServer(t *testing.T) (*Server, *transcript.InMemoryStore, *atomic.Int32) {
	t.Helper()
	var contextGets atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		contextGets.Add(1)
		w.Write([]byte(`{"data":{"systemPrompt":"p","status":"active"}}`))
	}))
	t.Cleanup(upstream.Close)

	client := backend.NewClient(upstream.URL, "test-key", time.Second, nil,
		backend.WithLogger(log.New(io.Discard, "", 0)))
	archive := transcript.NewInMemoryStore()
	return New(client, archive, nil), archive, &contextGets
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)
	router := s.Router()

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, router, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestGetTranscript(t *testing.T) {
	s, archive, _ := newTestServer(t)
	router := s.Router()

	ctx := context.Background()
	for _, content := range []string{"one", "two", "three"} {
		archive.SaveTurn(ctx, transcript.TurnRecord{InterviewID: "abc123", Role: "user", Content: content})
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/interviews/abc123/transcript?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		InterviewID string                  `json:"interview_id"`
		Turns       []transcript.TurnRecord `json:"turns"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.InterviewID != "abc123" {
		t.Errorf("interview_id = %q, want abc123", body.InterviewID)
	}
	if len(body.Turns) != 2 || body.Turns[0].Content != "two" || body.Turns[1].Content != "three" {
		t.Errorf("turns = %v, want the newest two", body.Turns)
	}
}

func TestGetTranscriptEmptyAndBadLimit(t *testing.T) {
	s, _, _ := newTestServer(t)
	router := s.Router()

	rec := doRequest(t, router, http.MethodGet, "/v1/interviews/unknown/transcript")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown interview", rec.Code)
	}
	var body struct {
		Turns []transcript.TurnRecord `json:"turns"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Turns == nil || len(body.Turns) != 0 {
		t.Errorf("turns = %v, want empty array", body.Turns)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/interviews/abc123/transcript?limit=nope")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad limit", rec.Code)
	}
}

func TestInvalidateContext(t *testing.T) {
	s, _, contextGets := newTestServer(t)
	router := s.Router()

	s.client.FetchContext(context.Background(), "abc123")
	s.client.FetchContext(context.Background(), "abc123")
	if n := contextGets.Load(); n != 1 {
		t.Fatalf("upstream gets = %d, want 1 before invalidation", n)
	}

	rec := doRequest(t, router, http.MethodPost, "/v1/interviews/abc123/context/invalidate")
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d, want 200", rec.Code)
	}
	s.client.FetchContext(context.Background(), "abc123")
	if n := contextGets.Load(); n != 2 {
		t.Fatalf("upstream gets = %d, want 2 after invalidation", n)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/context/invalidate")
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate-all status = %d, want 200", rec.Code)
	}
	s.client.FetchContext(context.Background(), "abc123")
	if n := contextGets.Load(); n != 3 {
		t.Fatalf("upstream gets = %d, want 3 after full invalidation", n)
	}
}
