package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pesquisacampo/coleta-gateway/internal/http/render"
)

// Recover devolve 500 sanitizado quando um handler entra em panic.
func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).
					Msg("panic recuperado")
				render.Error(w, http.StatusInternalServerError, "erro interno")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
