package gateway

import "fmt"

// TransportError reports a network failure or a non-success HTTP status from
// the remote service. Callers recover locally; it is never fatal.
type TransportError struct {
	Op     string // "query", "summarize", "health"
	Status int    // HTTP status, 0 for network errors
	Err    error  // underlying error, nil for status failures
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s request failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway: %s returned status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a payload missing an expected field or one
// that could not be decoded at all.
type MalformedResponseError struct {
	Op    string
	Field string // missing field, empty when the body was undecodable
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("gateway: %s response missing %q", e.Op, e.Field)
	}
	return fmt.Sprintf("gateway: %s response undecodable: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
