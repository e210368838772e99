package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// statusRecorder remembers the response status and any attributes handlers
// attach for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	attrs  []slog.Attr
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// annotate adds attributes to the request log record, if w is being recorded.
func annotate(w http.ResponseWriter, attrs ...slog.Attr) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.attrs = append(rec.attrs, attrs...)
	}
}

// withRequestLog assigns every request an ID and logs one record per request.
// A well-formed incoming X-Request-ID is kept.
func (h *handler) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		attrs := append([]slog.Attr{
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		}, rec.attrs...)

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case rec.status >= 400:
			level = slog.LevelWarn
		}
		h.log.LogAttrs(r.Context(), level, "request", attrs...)
	})
}
