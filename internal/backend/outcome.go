package backend

import "fmt"

// OutcomeKind classifies the result of a backend call. Failures are values,
// not errors: the conversation must keep running whatever the backend does,
// so callers inspect the kind instead of unwrapping an error chain.
type OutcomeKind string

const (
	OutcomeOK           OutcomeKind = "ok"
	OutcomeCacheHit     OutcomeKind = "cache_hit"
	OutcomeHTTPStatus   OutcomeKind = "http_status"
	OutcomeTimeout      OutcomeKind = "timeout"
	OutcomeTransport    OutcomeKind = "transport"
	OutcomeDecode       OutcomeKind = "decode"
	OutcomeBackendError OutcomeKind = "backend_error"
)

// Outcome reports how a backend call ended. StatusCode is set for
// OutcomeHTTPStatus; Detail carries the transport or backend error text.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Detail     string
}

// OK reports whether the call succeeded (including cache hits).
func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK || o.Kind == OutcomeCacheHit
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeHTTPStatus:
		return fmt.Sprintf("%s %d", o.Kind, o.StatusCode)
	case OutcomeTransport, OutcomeDecode, OutcomeBackendError:
		if o.Detail != "" {
			return fmt.Sprintf("%s: %s", o.Kind, o.Detail)
		}
	}
	return string(o.Kind)
}
