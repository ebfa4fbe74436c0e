package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/sfinx-hq/iris/internal/observability"
)

// Client mediates all reads and writes against the interview backend.
// Context fetches are cached for the process lifetime and concurrent first
// fetches for the same interview are coalesced into a single request.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *gocache.Cache
	group   singleflight.Group
	metrics *observability.Metrics
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		cache:   gocache.New(gocache.NoExpiration, 0),
		metrics: metrics,
		logger:  log.New(os.Stderr, "backend: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type fetchResult struct {
	ctx     *InterviewContext
	outcome Outcome
}

// FetchContext returns the interview context for interviewID, or nil with a
// non-OK outcome when the backend has nothing usable. A cached entry is
// returned without network I/O. A nil context is an expected, recoverable
// result; the session proceeds with the default prompt.
func (c *Client) FetchContext(ctx context.Context, interviewID string) (*InterviewContext, Outcome) {
	if v, found := c.cache.Get(interviewID); found {
		c.observeFetch(Outcome{Kind: OutcomeCacheHit})
		return v.(*InterviewContext), Outcome{Kind: OutcomeCacheHit}
	}

	v, err, _ := c.group.Do(interviewID, func() (any, error) {
		// Re-check under the flight: another caller may have populated the
		// cache while this one queued behind the singleflight lock.
		if cached, found := c.cache.Get(interviewID); found {
			return fetchResult{ctx: cached.(*InterviewContext), outcome: Outcome{Kind: OutcomeCacheHit}}, nil
		}
		res := c.fetchContext(ctx, interviewID)
		if res.outcome.Kind == OutcomeOK && res.ctx != nil {
			c.cache.Set(interviewID, res.ctx, gocache.NoExpiration)
		}
		return res, nil
	})
	if err != nil {
		// The flight function never returns an error; keep the sentinel
		// contract anyway.
		c.observeFetch(Outcome{Kind: OutcomeTransport, Detail: err.Error()})
		return nil, Outcome{Kind: OutcomeTransport, Detail: err.Error()}
	}
	res := v.(fetchResult)
	c.observeFetch(res.outcome)
	if !res.outcome.OK() {
		c.logger.Printf("context fetch failed for interview %s: %s", interviewID, res.outcome)
	}
	return res.ctx, res.outcome
}

func (c *Client) fetchContext(ctx context.Context, interviewID string) fetchResult {
	start := time.Now()
	defer c.observeLatency(start)

	url := fmt.Sprintf("%s/internal/ai-interviews/%s/context", c.baseURL, interviewID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchResult{outcome: Outcome{Kind: OutcomeTransport, Detail: err.Error()}}
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		return fetchResult{outcome: classifyTransportErr(err)}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fetchResult{outcome: Outcome{
			Kind:       OutcomeHTTPStatus,
			StatusCode: res.StatusCode,
			Detail:     strings.TrimSpace(string(body)),
		}}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fetchResult{outcome: Outcome{Kind: OutcomeTransport, Detail: err.Error()}}
	}

	// The backend wraps payloads in a one-level {data: ...} envelope; a
	// bare object is accepted too.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fetchResult{outcome: Outcome{Kind: OutcomeDecode, Detail: err.Error()}}
	}
	payload := body
	if data, ok := raw["data"]; ok {
		payload = data
		raw = nil
		if err := json.Unmarshal(payload, &raw); err != nil {
			return fetchResult{outcome: Outcome{Kind: OutcomeDecode, Detail: err.Error()}}
		}
	}
	if errField, ok := raw["error"]; ok {
		return fetchResult{outcome: Outcome{Kind: OutcomeBackendError, Detail: string(errField)}}
	}

	var ic InterviewContext
	if err := json.Unmarshal(payload, &ic); err != nil {
		return fetchResult{outcome: Outcome{Kind: OutcomeDecode, Detail: err.Error()}}
	}
	return fetchResult{ctx: &ic, outcome: Outcome{Kind: OutcomeOK}}
}

// StoreTranscript appends one turn to the interview record. Success is HTTP
// 200 or 201; anything else is reported in the outcome and otherwise dropped.
// No retry is attempted.
func (c *Client) StoreTranscript(ctx context.Context, interviewID, role, content string) Outcome {
	start := time.Now()
	defer c.observeLatency(start)

	payload, err := json.Marshal(transcriptEntry{Role: role, Content: content})
	if err != nil {
		return c.observeStore(interviewID, Outcome{Kind: OutcomeDecode, Detail: err.Error()})
	}

	url := fmt.Sprintf("%s/internal/ai-interviews/%s/transcript", c.baseURL, interviewID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return c.observeStore(interviewID, Outcome{Kind: OutcomeTransport, Detail: err.Error()})
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		return c.observeStore(interviewID, classifyTransportErr(err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return c.observeStore(interviewID, Outcome{
			Kind:       OutcomeHTTPStatus,
			StatusCode: res.StatusCode,
			Detail:     strings.TrimSpace(string(body)),
		})
	}
	return c.observeStore(interviewID, Outcome{Kind: OutcomeOK})
}

// Invalidate removes one cached context entry.
func (c *Client) Invalidate(interviewID string) {
	c.cache.Delete(interviewID)
}

// InvalidateAll clears the whole context cache.
func (c *Client) InvalidateAll() {
	c.cache.Flush()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) observeLatency(start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveBackendLatency(time.Since(start))
	}
}

func (c *Client) observeFetch(o Outcome) {
	if c.metrics != nil {
		c.metrics.ContextFetches.WithLabelValues(string(o.Kind)).Inc()
	}
}

func (c *Client) observeStore(interviewID string, o Outcome) Outcome {
	if c.metrics != nil {
		c.metrics.TranscriptWrites.WithLabelValues(string(o.Kind)).Inc()
	}
	if !o.OK() {
		c.logger.Printf("transcript store failed for interview %s: %s", interviewID, o)
	}
	return o
}

func classifyTransportErr(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: OutcomeTimeout, Detail: err.Error()}
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return Outcome{Kind: OutcomeTimeout, Detail: err.Error()}
	}
	return Outcome{Kind: OutcomeTransport, Detail: err.Error()}
}
