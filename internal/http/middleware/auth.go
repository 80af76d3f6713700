package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pesquisacampo/coleta-gateway/internal/auth"
	"github.com/pesquisacampo/coleta-gateway/internal/http/render"
)

// Auth exige "Authorization: Bearer <token>" quando há hash configurado.
// Sem hash o middleware apenas repassa a requisição.
func Auth(verifier *auth.TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !verifier.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				render.Error(w, http.StatusUnauthorized, "token ausente")
				return
			}

			ok, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Error().Err(err).Msg("falha ao verificar token do gateway")
			}
			if !ok {
				render.Error(w, http.StatusUnauthorized, "token inválido")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
