package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultListLimit é o máximo de objetos devolvidos por List quando limit <= 0.
const DefaultListLimit = 1000

// ErrUnexpectedFormat indica resposta de listagem que não é um array JSON.
var ErrUnexpectedFormat = errors.New("formato inesperado do storage")

// ObjectRef representa um item devolvido pela listagem, relativo ao prefixo consultado.
type ObjectRef struct {
	Name string `json:"name"`
}

// Client define as três operações que o gateway precisa do storage.
type Client interface {
	Put(ctx context.Context, path string, body []byte, contentType string) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string, limit int) ([]ObjectRef, error)
}

// Doer abstrai o cliente HTTP usado nas chamadas de saída.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ConfigError sinaliza que URL ou credencial do storage não foram configuradas.
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return strings.Join(e.Fields, " ou ") + " não configurados"
}

// BackendError descreve resposta não-2xx (ou malformada) do storage.
// Body guarda o JSON devolvido pelo backend ou {"raw": texto} quando não é JSON.
type BackendError struct {
	Op         string
	StatusCode int
	Body       any
	Err        error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: %s falhou (%d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("storage: %s falhou (%d)", e.Op, e.StatusCode)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func normalizeKey(path string) string {
	return strings.TrimLeft(path, "/")
}
