package shape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/beehive-mcp/beehive-mcp/internal/beehive"
)

// ErrInvalidActionOptions is returned when action options are neither an
// object nor an array.
var ErrInvalidActionOptions = errors.New("action options must be an object or an array")

// EventRequest is the flat form of a Chain's triggering event.
type EventRequest struct {
	Bee     string
	Name    string
	Options json.RawMessage
}

// ActionRequest is one action to materialize before it can join a Chain.
type ActionRequest struct {
	Bee     string
	Name    string
	Options json.RawMessage
}

// ChainRequest is the flat, agent-facing form of a Chain. A nil Event,
// empty Actions or nil Filters keep the current value on update.
type ChainRequest struct {
	Name        string
	Description string
	Event       *EventRequest
	Actions     []ActionRequest
	Filters     []json.RawMessage
}

// ActionCreator persists an action and returns its remote ID.
type ActionCreator interface {
	CreateAction(ctx context.Context, action *beehive.Action) (string, error)
}

// ChainActionError reports an action that could not be materialized. The
// Chain itself was never submitted. Actions created before the failure are
// not rolled back; their IDs are listed in Orphaned.
type ChainActionError struct {
	Index    int
	Bee      string
	Name     string
	Orphaned []string
	Err      error
}

func (e *ChainActionError) Error() string {
	msg := fmt.Sprintf("action %d (%s on bee %s) could not be created, chain not submitted: %v", e.Index, e.Name, e.Bee, e.Err)
	if len(e.Orphaned) > 0 {
		msg += "; orphaned actions: " + strings.Join(e.Orphaned, ", ")
	}
	return msg
}

func (e *ChainActionError) Unwrap() error {
	return e.Err
}

// BuildChain assembles the full remote Chain. New actions are created one
// at a time in request order; the first failure aborts with a
// *ChainActionError. current is the Chain as it exists remotely, or nil when
// creating.
func BuildChain(ctx context.Context, creator ActionCreator, req ChainRequest, current *beehive.Chain) (*beehive.Chain, error) {
	chain := &beehive.Chain{
		Name:        req.Name,
		Description: req.Description,
		Filters:     req.Filters,
	}

	if current != nil {
		if chain.Name == "" {
			chain.Name = current.Name
		}
		if chain.Description == "" {
			chain.Description = current.Description
		}
		if chain.Filters == nil {
			chain.Filters = current.Filters
		}
		chain.Event = current.Event
		chain.Actions = current.Actions
	}
	if chain.Filters == nil {
		chain.Filters = []json.RawMessage{}
	}

	if req.Event != nil {
		chain.Event = RemoteEvent(req.Event, chain.Event)
	}

	if len(req.Actions) > 0 {
		ids, err := MaterializeActions(ctx, creator, req.Actions)
		if err != nil {
			return nil, err
		}
		chain.Actions = ids
	}
	if chain.Actions == nil {
		chain.Actions = []string{}
	}

	return chain, nil
}

// RemoteEvent maps a flat event onto the remote field names. Empty bee or
// name fall back to prev when given. Options are never defaulted to {}.
func RemoteEvent(e *EventRequest, prev *beehive.Event) *beehive.Event {
	out := &beehive.Event{Bee: e.Bee, Name: e.Name}
	if prev != nil {
		if out.Bee == "" {
			out.Bee = prev.Bee
		}
		if out.Name == "" {
			out.Name = prev.Name
		}
	}
	if !isNull(e.Options) {
		out.Options = e.Options
	}
	return out
}

// MaterializeActions creates each action in order and collects the IDs in
// that same order. All options are normalized before the first create so a
// malformed request never leaves orphans behind.
func MaterializeActions(ctx context.Context, creator ActionCreator, actions []ActionRequest) ([]string, error) {
	pending := make([]*beehive.Action, len(actions))
	for i, a := range actions {
		opts, err := NormalizeActionOptions(a.Options)
		if err != nil {
			return nil, fmt.Errorf("actions[%d] (%s): %w", i, a.Name, err)
		}
		pending[i] = &beehive.Action{Bee: a.Bee, Name: a.Name, Options: opts}
	}

	ids := make([]string, 0, len(actions))
	for i, action := range pending {
		id, err := creator.CreateAction(ctx, action)
		if err != nil {
			return nil, &ChainActionError{Index: i, Bee: action.Bee, Name: action.Name, Orphaned: ids, Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NormalizeActionOptions turns an option mapping into an ordered list of
// placeholders, keeping the caller's key order. An array is assumed to be in
// placeholder shape already and is returned unchanged. Absent options become
// an empty list.
func NormalizeActionOptions(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return json.RawMessage("[]"), nil
	}

	switch trimmed[0] {
	case '[':
		return raw, nil
	case '{':
	default:
		return nil, ErrInvalidActionOptions
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading action options: %w", err)
	}

	placeholders := []beehive.Placeholder{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading action options: %w", err)
		}
		key, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading action option %s: %w", key, err)
		}
		placeholders = append(placeholders, beehive.Placeholder{
			Name:  key,
			Type:  TypeName(value),
			Value: value,
		})
	}

	return json.Marshal(placeholders)
}

// TypeName names the primitive type of a decoded JSON value the way the
// engine's placeholders expect: string, number, boolean, or object for
// everything else, null included.
func TypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
