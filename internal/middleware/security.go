package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	apierrors "rfdestaques/internal/errors"
)

type contextKey string

const apiClientKey contextKey = "api_client"

// APIClient returns the client name attached by APIKeyAuth
func APIClient(ctx context.Context) string {
	if client, ok := ctx.Value(apiClientKey).(string); ok {
		return client
	}
	return ""
}

// APIKeyAuth checks the X-API-Key header against validKeys (key -> client
// name). With no keys configured every request passes.
func APIKeyAuth(logger *slog.Logger, validKeys map[string]string, errorHandler *apierrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				logger.WarnContext(ctx, "missing API key",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				errorHandler.HandleError(w, r, apierrors.Unauthorized("API key required"))
				return
			}

			clientName, ok := lookupKey(validKeys, apiKey)
			if !ok {
				logger.WarnContext(ctx, "invalid API key",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				errorHandler.HandleError(w, r, apierrors.Unauthorized("Invalid API key"))
				return
			}

			ctx = context.WithValue(ctx, apiClientKey, clientName)
			logger.DebugContext(ctx, "API key authentication successful", "client", clientName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupKey(validKeys map[string]string, candidate string) (string, bool) {
	for key, client := range validKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			return client, true
		}
	}
	return "", false
}

// AuditLog records who triggered a sensitive operation and how it ended.
// Mount it after APIKeyAuth.
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			client := APIClient(ctx)
			logger.InfoContext(ctx, "audit log",
				"event_type", "api_access",
				"client", client,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(ww, r)

			logger.InfoContext(ctx, "audit log complete",
				"event_type", "api_response",
				"client", client,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
