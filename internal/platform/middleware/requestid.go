package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"complyd/pkg/requestcontext"
)

// RequestID assigns every request a correlation ID, honoring one supplied by
// an upstream proxy. The ID is echoed in the response and threaded through
// logs and audit events.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
