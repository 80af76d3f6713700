package upload

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pesquisacampo/coleta-gateway/internal/http/render"
)

// Handler expõe os três endpoints de upload do app.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, endpoint := range []Endpoint{Coleta, Pesquisador, Participante} {
		r.Post("/"+endpoint.Name, h.handleUpload(endpoint))
	}
}

type uploadResponse struct {
	Status string  `json:"status"`
	Key    *string `json:"supabase_key"`
}

func (h *Handler) handleUpload(endpoint Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := Parse(r.Body, endpoint.DefaultContentType)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				render.Error(w, http.StatusBadRequest, verr.Message)
				return
			}
			render.Error(w, http.StatusBadRequest, ErrInvalidJSON.Message)
			return
		}

		key, err := h.service.Upload(r.Context(), endpoint, req)
		if err != nil {
			h.logger.Error().Err(err).Str("endpoint", endpoint.Name).Str("path", req.Path).Msg("upload para o storage falhou")
			render.StorageError(w, err)
			return
		}

		resp := uploadResponse{Status: "ok"}
		if key != "" {
			resp.Key = &key
		}
		render.JSON(w, http.StatusOK, resp)
	}
}
