package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/beehive-mcp/beehive-mcp/internal/logger"
)

// Middleware creates HTTP middleware for bearer token authentication.
// When tokens is empty every request passes through unauthenticated.
func Middleware(tokens *TokenSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !tokens.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, "Authentication required (Bearer token)", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if err := tokens.Validate(token); err != nil {
				logger.Info("Token validation failed for %s: %v", r.RemoteAddr, err)
				jsonError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := NewContext(r.Context(), &AuthContext{TokenID: maskToken(token)})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    -32001,
			"message": message,
		},
		"id": nil,
	})
}

func maskToken(tokenID string) string {
	if len(tokenID) <= 12 {
		return "***"
	}
	return tokenID[:8] + "..." + tokenID[len(tokenID)-4:]
}
