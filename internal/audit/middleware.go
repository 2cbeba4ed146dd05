package audit

import (
	"fmt"
	"net/http"
	"time"
)

// errorTrailWriter captures the response status for the HTTP error trail.
type errorTrailWriter struct {
	http.ResponseWriter
	status int
}

func (w *errorTrailWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *errorTrailWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// ErrorTrail records one http_error audit event for every response with
// status >= 400, regardless of which handler produced it. Handlers that audit
// their own failures in more detail still get this coarse entry; the trail
// favors completeness over deduplication.
func ErrorTrail(rec *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tw := &errorTrailWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(tw, r)

			if tw.status >= 400 {
				rec.Record(r.Context(), Event{
					Action:       ActionHTTPError,
					ResourceType: ResourceHTTP,
					Status:       StatusFail,
					Message:      fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, tw.status),
					Meta: map[string]any{
						"durationMs": time.Since(start).Milliseconds(),
						"statusCode": tw.status,
					},
				})
			}
		})
	}
}
