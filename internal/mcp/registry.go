package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcp_sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/beehive-mcp/beehive-mcp/internal/audit"
	"github.com/beehive-mcp/beehive-mcp/internal/auth"
	"github.com/beehive-mcp/beehive-mcp/internal/logger"
	"github.com/beehive-mcp/beehive-mcp/internal/metrics"
)

// ToolHandler runs a tool against already-validated JSON arguments and
// returns the remote response body.
type ToolHandler func(ctx context.Context, arguments json.RawMessage) (json.RawMessage, error)

// ToolDef defines a tool with all metadata
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// Schema returns the input schema in the form the MCP SDK expects.
func (d *ToolDef) Schema() *jsonschema.Schema {
	return d.schema
}

// Registry stores tool definitions and handlers
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]*ToolDef
	handlers map[string]ToolHandler
	order    []string // preserve registration order
	redact   []string
}

// NewRegistry creates a new tool registry. Any redact strings (the upstream
// API key) are scrubbed from error messages before they reach a caller.
func NewRegistry(redact ...string) *Registry {
	r := &Registry{
		tools:    make(map[string]*ToolDef),
		handlers: make(map[string]ToolHandler),
	}
	for _, s := range redact {
		if s != "" {
			r.redact = append(r.redact, s)
		}
	}
	return r
}

// Register adds a tool with its handler to the registry. The input schema is
// generated from P unless def already carries one; it is compiled once and
// used both for listing and for validating every call.
func Register[P any](r *Registry, def ToolDef, handler func(ctx context.Context, params P) (json.RawMessage, error)) {
	if def.InputSchema == nil {
		def.InputSchema = GenerateSchema[P]()
	}
	schema, resolved, err := compileSchema(def.InputSchema)
	if err != nil {
		panic(fmt.Sprintf("tool %s: invalid input schema: %v", def.Name, err))
	}
	def.schema = schema
	def.resolved = resolved

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = &def
	r.handlers[def.Name] = wrapHandler(handler)
}

// GetTool returns a tool definition by name
func (r *Registry) GetTool(name string) (*ToolDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// GetAllTools returns all tool definitions in registration order
func (r *Registry) GetAllTools() []*ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*ToolDef, 0, len(r.order))
	for _, name := range r.order {
		if tool, ok := r.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	return tools
}

// Dispatch runs one tool call end to end. It never returns a nil Result and
// never panics: unknown tools, schema violations, upstream failures and
// handler panics all come back as an error-tagged Result.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) *Result {
	start := time.Now()
	ctx = context.WithValue(ctx, logger.ContextKeyTool, name)

	res := r.dispatch(ctx, name, args)

	duration := time.Since(start)
	status := string(KindSuccess)
	if res.Err != nil {
		status = string(res.Err.Kind)
		logger.WarnContext(ctx, "tool call failed", "kind", res.Err.Kind, "error", res.Err.Message)
	} else {
		logger.DebugContext(ctx, "tool call succeeded", "duration_ms", duration.Milliseconds())
	}
	label := name
	if res.Err != nil && res.Err.Kind == KindToolNotFound {
		// Caller-supplied names would make label cardinality unbounded.
		label = "unknown"
	}
	metrics.RecordToolCall(label, status, duration.Seconds())
	audit.Log(auditEvent(ctx, res, duration))

	return res
}

func (r *Registry) dispatch(ctx context.Context, name string, args json.RawMessage) (res *Result) {
	res = &Result{Tool: name}

	r.mu.RLock()
	def, ok := r.tools[name]
	handler := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		res.Err = &ToolError{Kind: KindToolNotFound, Message: fmt.Sprintf("unknown tool: %s", name)}
		return res
	}

	args, err := validateArguments(def, args)
	if err != nil {
		res.Err = &ToolError{Kind: KindInvalidArguments, Message: err.Error()}
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "tool handler panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			res.Payload = nil
			res.Err = &ToolError{Kind: KindInternal, Message: fmt.Sprintf("internal error: %v", p)}
		}
	}()

	payload, err := handler(ctx, args)
	if err != nil {
		res.Err = r.classify(err)
		return res
	}
	res.Payload = payload
	return res
}

// validateArguments normalizes empty input to {} and checks it against the
// tool's schema.
func validateArguments(def *ToolDef, args json.RawMessage) (json.RawMessage, error) {
	if len(strings.TrimSpace(string(args))) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if _, ok := instance.(map[string]any); !ok {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	if err := def.resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", def.Name, err)
	}
	return args, nil
}

// RegisterWithMCPServer registers all tools with an MCP SDK server
func (r *Registry) RegisterWithMCPServer(server *mcp_sdk.Server) {
	for _, def := range r.GetAllTools() {
		name := def.Name
		tool := &mcp_sdk.Tool{
			Name:        name,
			Description: def.Description,
			InputSchema: def.schema,
		}

		server.AddTool(tool, func(ctx context.Context, req *mcp_sdk.CallToolRequest) (*mcp_sdk.CallToolResult, error) {
			var args json.RawMessage
			if req.Params != nil {
				args = req.Params.Arguments
			}
			if logger.RequestIDFromContext(ctx) == "" {
				ctx = logger.WithRequestID(ctx, newRequestID())
			}
			return r.Dispatch(ctx, name, args).CallToolResult(), nil
		})
	}
}

// unknownToolMiddleware answers tools/call for names the registry does not
// hold. The SDK would otherwise reply with a JSON-RPC error; routing through
// Dispatch returns a ToolNotFound result and keeps metrics and audit whole.
func (r *Registry) unknownToolMiddleware(next mcp_sdk.MethodHandler) mcp_sdk.MethodHandler {
	return func(ctx context.Context, method string, req mcp_sdk.Request) (mcp_sdk.Result, error) {
		if method != "tools/call" {
			return next(ctx, method, req)
		}
		params, ok := req.GetParams().(*mcp_sdk.CallToolParamsRaw)
		if !ok || params == nil {
			return next(ctx, method, req)
		}
		if _, known := r.GetTool(params.Name); known {
			return next(ctx, method, req)
		}
		if logger.RequestIDFromContext(ctx) == "" {
			ctx = logger.WithRequestID(ctx, newRequestID())
		}
		return r.Dispatch(ctx, params.Name, params.Arguments).CallToolResult(), nil
	}
}

// wrapHandler wraps a typed handler into a ToolHandler
func wrapHandler[P any](handler func(ctx context.Context, params P) (json.RawMessage, error)) ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
		var params P
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, &argumentError{err: err}
		}
		return handler(ctx, params)
	}
}

func auditEvent(ctx context.Context, res *Result, d time.Duration) *audit.Event {
	e := &audit.Event{
		Tool:       res.Tool,
		RequestID:  logger.RequestIDFromContext(ctx),
		TokenID:    auth.TokenID(ctx),
		Kind:       audit.KindSuccess,
		Success:    res.Err == nil,
		DurationMs: d.Milliseconds(),
	}
	if res.Err != nil {
		e.Kind = audit.Kind(res.Err.Kind)
		e.Error = res.Err.Message
	}
	return e
}

// compileSchema converts a generated schema map into a resolved
// jsonschema.Schema usable for validation.
func compileSchema(raw map[string]any) (*jsonschema.Schema, *jsonschema.Resolved, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, err
	}
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, nil, err
	}
	// The MCP SDK requires object input schemas.
	if schema.Type == "" {
		schema.Type = "object"
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, nil, err
	}
	return schema, resolved, nil
}

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// GenerateSchema creates a JSON Schema from a Go type using reflection.
// Fields without omitempty are required; a `description` tag becomes the
// property description.
func GenerateSchema[P any]() map[string]any {
	var p P
	t := reflect.TypeOf(p)
	if t == nil {
		return map[string]any{"type": "object"}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return map[string]any{"type": "object"}
	}
	return structSchema(t)
}

func structSchema(t reflect.Type) map[string]any {
	props := make(map[string]any)
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}

	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		omitempty := false
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitempty = true
				}
			}
		}

		propSchema := typeToSchema(field.Type)
		if desc := field.Tag.Get("description"); desc != "" {
			propSchema["description"] = desc
		}
		props[name] = propSchema

		if !omitempty {
			required = append(required, name)
		}
	}

	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// typeToSchema converts a Go type to JSON Schema type
func typeToSchema(t reflect.Type) map[string]any {
	if t == rawMessageType {
		// Shape is checked by the handler.
		return map[string]any{}
	}

	switch t.Kind() {
	case reflect.Ptr:
		s := typeToSchema(t.Elem())
		if typ, ok := s["type"].(string); ok {
			s["type"] = []string{typ, "null"}
		}
		return s
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": typeToSchema(t.Elem()),
		}
	case reflect.Map:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": typeToSchema(t.Elem()),
		}
	case reflect.Struct:
		return structSchema(t)
	case reflect.Interface:
		return map[string]any{}
	default:
		return map[string]any{"type": "string"}
	}
}
