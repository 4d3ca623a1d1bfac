package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashcard-api/internal/api/shared"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
)

// TraceHeader carries the request's trace ID in every response.
const TraceHeader = "X-Trace-ID"

// TraceMiddleware adds a trace ID to the request context, together with a
// logger that carries it. A well-formed X-Trace-ID sent by the client is
// kept so calls can be correlated across services. Apply it before any
// middleware that logs.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if !shared.ValidTraceID(traceID) {
			traceID = shared.NewTraceID()
		}
		ctx := shared.WithTraceID(r.Context(), traceID)

		log := logger.FromContext(ctx).With(slog.String("trace_id", traceID))
		ctx = logger.WithContext(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
