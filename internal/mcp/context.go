package mcp

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/beehive-mcp/beehive-mcp/internal/logger"
)

// RequestIDHeader carries the request ID in and out of the HTTP surface.
const RequestIDHeader = "X-Request-ID"

func newRequestID() string {
	return uuid.NewString()
}

// requestIDMiddleware takes the caller's X-Request-ID or assigns one, echoes
// it back and stores it in the request context for logging and audit.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		logger.DebugContext(ctx, "http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
