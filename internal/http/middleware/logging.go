package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logging escreve um log estruturado por requisição.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var event *zerolog.Event
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			default:
				event = logger.Info()
			}

			event = event.Str("method", r.Method).Str("path", r.URL.Path).
				Int("status", status).Int("bytes", ww.BytesWritten()).Dur("duration", time.Since(start))

			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				event = event.Str("route", rctx.RoutePattern())
			}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				event = event.Str("request_id", reqID)
			}
			event = event.Str("ip", r.RemoteAddr)
			if ua := r.Header.Get("User-Agent"); ua != "" {
				event = event.Str("user_agent", ua)
			}

			event.Msg("http_request")
		})
	}
}
