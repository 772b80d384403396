package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"

	"github.com/beehive-mcp/beehive-mcp/internal/auth"
	"github.com/beehive-mcp/beehive-mcp/internal/logger"
	"github.com/beehive-mcp/beehive-mcp/internal/metrics"
)

const (
	serverDescription = "Beehive automation and event system MCP server"
	vendorName        = "Beehive MCP"
	vendorURL         = "https://github.com/muesli/beehive"

	maxToolBodyBytes = 1 << 20
)

// Version is the server version reported to MCP clients and /metadata.
var Version = "0.1.0"

// Server exposes the Beehive tools over stdio MCP and HTTP.
type Server struct {
	name     string
	gateway  Gateway
	registry *Registry

	tokens      *auth.TokenSet
	rateLimiter *auth.RateLimiter

	mcpOnce   sync.Once
	mcpServer *mcp.Server
}

// ServerConfig holds the HTTP surface settings
type ServerConfig struct {
	Name              string
	Tokens            []string
	RequestsPerSecond float64
	Burst             int
	// Redact lists strings scrubbed from error messages (the upstream API key).
	Redact []string
}

// NewServer creates a new MCP server instance
func NewServer(gateway Gateway, cfg *ServerConfig) *Server {
	if cfg == nil {
		cfg = &ServerConfig{}
	}
	name := cfg.Name
	if name == "" {
		name = "beehive"
	}

	limiter := auth.DefaultRateLimiter()
	if cfg.RequestsPerSecond > 0 && cfg.Burst > 0 {
		limiter = auth.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}

	s := &Server{
		name:        name,
		gateway:     gateway,
		registry:    NewRegistry(cfg.Redact...),
		tokens:      auth.NewTokenSet(cfg.Tokens),
		rateLimiter: limiter,
	}
	s.registerAllTools(s.registry)
	return s
}

// GetRegistry returns the tool registry
func (s *Server) GetRegistry() *Registry {
	return s.registry
}

// MCPServer returns the SDK server with every tool registered. It is built
// once and shared by the stdio and HTTP transports.
func (s *Server) MCPServer() *mcp.Server {
	s.mcpOnce.Do(func() {
		s.mcpServer = mcp.NewServer(&mcp.Implementation{
			Name:    s.name,
			Version: Version,
		}, nil)
		s.registry.RegisterWithMCPServer(s.mcpServer)
		s.mcpServer.AddReceivingMiddleware(s.registry.unknownToolMiddleware)
	})
	return s.mcpServer
}

// RunStdio serves MCP over stdin/stdout until the client disconnects or ctx
// is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	logger.Info("Beehive MCP server %s running on stdio", s.name)
	return s.MCPServer().Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP surface: streamable MCP, the plain tools API,
// metadata, health and metrics.
func (s *Server) Handler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return s.MCPServer()
	}, &mcp.StreamableHTTPOptions{
		EventStore: mcp.NewMemoryEventStore(nil),
	})

	toolsMux := http.NewServeMux()
	toolsMux.Handle("/mcp", mcpHandler)
	toolsMux.Handle("/mcp/", mcpHandler)
	toolsMux.HandleFunc("GET /tools", s.handleListToolsHTTP)
	toolsMux.HandleFunc("POST /tools/{name}", s.handleCallToolHTTP)

	// Auth first so the rate limiter can key by token.
	protected := auth.Middleware(s.tokens)(auth.RateLimitMiddleware(s.rateLimiter)(toolsMux))

	mainMux := http.NewServeMux()

	// Health, metadata and metrics need no authentication
	mainMux.HandleFunc("GET /health", s.handleHealthCheck)
	mainMux.HandleFunc("GET /ready", s.handleReadinessCheck)
	mainMux.HandleFunc("GET /metadata", s.handleMetadata)
	mainMux.Handle("/metrics", metrics.Handler())

	mainMux.Handle("/mcp", protected)
	mainMux.Handle("/mcp/", protected)
	mainMux.Handle("/tools", protected)
	mainMux.Handle("/tools/", protected)

	return requestIDMiddleware(metrics.Middleware(corsMiddleware().Handler(mainMux)))
}

// corsMiddleware lets browser clients reach every route from any origin.
// Preflight requests are answered here, ahead of authentication.
func corsMiddleware() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "Content-Type", "Last-Event-ID",
			"Mcp-Session-Id", "Mcp-Protocol-Version", RequestIDHeader,
		},
		ExposedHeaders: []string{"Mcp-Session-Id", "Retry-After", RequestIDHeader},
		MaxAge:         600,
	})
}

// Serve starts the HTTP surface and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupRateLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Beehive MCP server %s listening on %s", s.name, addr)
		logger.Info("Health check: http://localhost%s/health", addr)
		logger.Info("Metrics: http://localhost%s/metrics", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) cleanupRateLimiter(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.rateLimiter.Cleanup(10 * time.Minute); n > 0 {
				logger.Slog().Debug("dropped idle rate limiters", "count", n)
			}
		}
	}
}

// handleHealthCheck is a basic liveness check
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadinessCheck verifies the Beehive API answers
func (s *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.gateway.ListHives(ctx); err != nil {
		logger.WarnContext(ctx, "readiness probe failed", "error", s.registry.sanitize(err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "beehive unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ServerMetadata describes this server for GET /metadata.
type ServerMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Vendor      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"vendor"`
}

// Metadata returns the server's identity.
func (s *Server) Metadata() ServerMetadata {
	md := ServerMetadata{
		Name:        s.name,
		Description: serverDescription,
		Version:     Version,
	}
	md.Vendor.Name = vendorName
	md.Vendor.URL = vendorURL
	return md
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Metadata())
}

func (s *Server) handleListToolsHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.GetAllTools())
}

// toolResponse is the HTTP rendering of a tool result, shaped like an MCP
// CallToolResult.
type toolResponse struct {
	Content []toolContent `json:"content"`
	IsError bool          `json:"isError"`
	Kind    ErrorKind     `json:"kind,omitempty"`
}

type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *Server) handleCallToolHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxToolBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}
	if len(body) > maxToolBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return
	}

	res := s.registry.Dispatch(r.Context(), name, body)

	resp := toolResponse{
		Content: []toolContent{{Type: "text", Text: res.Text()}},
		IsError: res.IsError(),
	}
	if res.Err != nil {
		resp.Kind = res.Err.Kind
	}
	writeJSON(w, httpStatus(res), resp)
}

// httpStatus maps a tool outcome onto an HTTP status code.
func httpStatus(res *Result) int {
	if res.Err == nil {
		return http.StatusOK
	}
	switch res.Err.Kind {
	case KindToolNotFound:
		return http.StatusNotFound
	case KindInvalidArguments:
		return http.StatusBadRequest
	case KindNetwork, KindHTTP, KindPartialChain:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
