package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pesquisacampo/coleta-gateway/internal/storage"
)

// JSON escreve o payload sem envelope; o app móvel consome o formato cru.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error escreve {"error": mensagem}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"error": message})
}

// StorageError traduz falhas do storage para 500 ecoando status e corpo do backend.
func StorageError(w http.ResponseWriter, err error) {
	var configErr *storage.ConfigError
	if errors.As(err, &configErr) {
		Error(w, http.StatusInternalServerError, configErr.Error())
		return
	}

	var backendErr *storage.BackendError
	if errors.As(err, &backendErr) {
		if errors.Is(err, storage.ErrUnexpectedFormat) {
			JSON(w, http.StatusInternalServerError, map[string]any{
				"error": storage.ErrUnexpectedFormat.Error(),
				"body":  backendErr.Body,
			})
			return
		}
		JSON(w, http.StatusInternalServerError, map[string]any{
			"error":       "storage_error",
			"operation":   backendErr.Op,
			"status_code": backendErr.StatusCode,
			"body":        backendErr.Body,
		})
		return
	}

	Error(w, http.StatusInternalServerError, "storage indisponível")
}
