package util

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// NewID gera um UUID v4.
func NewID() string {
	return uuid.NewString()
}

// RequestID devolve o ID da requisição HTTP em curso (middleware RequestID do chi)
// ou um UUID novo quando a chamada não nasceu de uma requisição.
func RequestID(ctx context.Context) string {
	if id := chimiddleware.GetReqID(ctx); id != "" {
		return id
	}
	return NewID()
}
