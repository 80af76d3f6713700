package participante

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pesquisacampo/coleta-gateway/internal/http/render"
)

// Handler expõe a listagem agregada de participantes.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/list-participantes", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	participantes, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("listagem de participantes falhou")
		render.StorageError(w, err)
		return
	}

	h.logger.Debug().Int("total", len(participantes)).Dur("duration", time.Since(start)).Msg("participantes listados")
	render.JSON(w, http.StatusOK, participantes)
}
