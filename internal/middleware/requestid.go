package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// maxInboundIDLen caps client-supplied ids so a hostile header cannot
// bloat every downstream log line.
const maxInboundIDLen = 64

// RequestID tags the request with an id for log correlation. A well-formed
// inbound X-Request-ID is honored so ids stay stable across proxies;
// anything else is replaced with a fresh UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := sanitizeRequestID(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sanitizeRequestID rejects ids that are oversized or not printable ASCII.
func sanitizeRequestID(rid string) string {
	if rid == "" || len(rid) > maxInboundIDLen {
		return ""
	}
	for _, c := range rid {
		if c <= ' ' || c > '~' {
			return ""
		}
	}
	return rid
}

// RequestIDFromContext returns the id RequestID stored, or "".
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
