package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcp_sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/beehive-mcp/beehive-mcp/internal/beehive"
	"github.com/beehive-mcp/beehive-mcp/internal/shape"
)

// ErrorKind tags the outcome of a tool call.
type ErrorKind string

const (
	KindSuccess          ErrorKind = "success"
	KindNetwork          ErrorKind = "NetworkError"
	KindHTTP             ErrorKind = "HttpError"
	KindInvalidArguments ErrorKind = "InvalidArguments"
	KindToolNotFound     ErrorKind = "ToolNotFound"
	KindPartialChain     ErrorKind = "PartialChainCreationFailure"
	KindInternal         ErrorKind = "InternalError"
)

// ToolError is the uniform failure shape every dispatch error is folded into.
type ToolError struct {
	Kind    ErrorKind
	Message string
	Status  int // upstream HTTP status for HttpError
}

func (e *ToolError) Error() string {
	return e.Message
}

// Result is the outcome of one dispatched tool call.
type Result struct {
	Tool    string
	Payload json.RawMessage
	Err     *ToolError
}

// IsError reports whether the call failed.
func (r *Result) IsError() bool {
	return r.Err != nil
}

// Text renders the result as the tool response text: the remote body as
// indented JSON on success, "Error: <message>" on failure.
func (r *Result) Text() string {
	if r.Err != nil {
		return "Error: " + r.Err.Message
	}
	if len(r.Payload) == 0 {
		return "null"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, r.Payload, "", "  "); err != nil {
		return string(r.Payload)
	}
	return out.String()
}

// CallToolResult converts the result into the MCP SDK response.
func (r *Result) CallToolResult() *mcp_sdk.CallToolResult {
	if r.Err != nil {
		return NewErrorResult(r.Err.Message)
	}
	return NewTextResult(r.Text())
}

// argumentError marks arguments that passed the schema but could not be
// bound to the handler's parameter type.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string {
	return "invalid parameters: " + e.err.Error()
}

func (e *argumentError) Unwrap() error {
	return e.err
}

// classify maps a handler error onto the dispatch error taxonomy.
func (r *Registry) classify(err error) *ToolError {
	te := &ToolError{Kind: KindInternal, Message: r.sanitize(err.Error())}

	var apiErr *beehive.APIError
	var chainErr *shape.ChainActionError
	var argErr *argumentError
	var toolErr *ToolError

	switch {
	case errors.As(err, &toolErr):
		te.Kind = toolErr.Kind
		te.Status = toolErr.Status
	case errors.As(err, &chainErr):
		te.Kind = KindPartialChain
	case errors.As(err, &argErr), errors.Is(err, shape.ErrInvalidActionOptions):
		te.Kind = KindInvalidArguments
	case errors.As(err, &apiErr):
		if apiErr.Phase == beehive.PhaseHTTP {
			te.Kind = KindHTTP
			te.Status = apiErr.Status
		} else {
			te.Kind = KindNetwork
		}
	}
	return te
}

// sanitize removes configured secrets from a message.
func (r *Registry) sanitize(msg string) string {
	for _, secret := range r.redact {
		msg = strings.ReplaceAll(msg, secret, "[REDACTED]")
	}
	return msg
}

func invalidArguments(format string, args ...any) error {
	return &ToolError{Kind: KindInvalidArguments, Message: fmt.Sprintf(format, args...)}
}
