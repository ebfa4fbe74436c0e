package observability

import (
	"fmt"
	"testing"
	"time"
)

func TestNewMetricsRegistersAllInstruments(t *testing.T) {
	m := NewMetrics(fmt.Sprintf("iris_test_%d", time.Now().UnixNano()))

	m.ActiveSessions.Inc()
	m.ActiveSessions.Dec()
	m.SessionEvents.WithLabelValues("started").Inc()
	m.ContextFetches.WithLabelValues("cache_hit").Inc()
	m.TranscriptWrites.WithLabelValues("ok").Inc()
	m.TranscriptQueueDepth.Inc()
	m.TranscriptDropped.Inc()
	m.ObserveBackendLatency(42 * time.Millisecond)
}

func TestNewMetricsDistinctNamespaces(t *testing.T) {
	// Two instances must coexist on the default registry.
	base := fmt.Sprintf("iris_test_ns_%d", time.Now().UnixNano())
	a := NewMetrics(base + "_a")
	b := NewMetrics(base + "_b")
	a.ActiveSessions.Inc()
	b.ActiveSessions.Inc()
}
