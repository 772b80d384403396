package beehive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Phase tells whether a failed call reached the remote engine.
type Phase string

const (
	// PhaseNetwork means no response was received.
	PhaseNetwork Phase = "network"
	// PhaseHTTP means a response arrived with a non-2xx status.
	PhaseHTTP Phase = "http"
)

// APIError is the single error kind every Client method returns.
type APIError struct {
	Op      string // e.g. "fetching bee 42"
	Phase   Phase
	Status  int // zero for PhaseNetwork
	Body    any // decoded JSON body, or the raw text when it is not JSON
	Message string
}

func (e *APIError) Error() string {
	switch e.Phase {
	case PhaseHTTP:
		return fmt.Sprintf("%s: %d - %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: no response received - %s", e.Op, e.Message)
	}
}

// IsNetwork reports whether err is an APIError from the network phase.
func IsNetwork(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Phase == PhaseNetwork
}

// IsHTTP reports whether err is an APIError carrying a non-2xx status.
func IsHTTP(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Phase == PhaseHTTP
}

// networkError normalizes a transport failure.
func networkError(op string, err error) *APIError {
	return &APIError{Op: op, Phase: PhaseNetwork, Message: err.Error()}
}

// httpError normalizes a non-2xx response. The body is decoded as JSON when
// possible so callers can inspect it; the message is its compact rendering.
func httpError(op string, status int, body []byte) *APIError {
	e := &APIError{Op: op, Phase: PhaseHTTP, Status: status}

	var decoded any
	if len(body) > 0 && json.Unmarshal(body, &decoded) == nil {
		e.Body = decoded
		compact, _ := json.Marshal(decoded)
		e.Message = string(compact)
		return e
	}

	e.Body = string(body)
	e.Message = string(body)
	if e.Message == "" {
		e.Message = "empty response body"
	}
	return e
}
