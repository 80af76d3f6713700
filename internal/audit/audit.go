package audit

import (
	"context"
	"errors"
	"time"
)

// Event registra um upload aceito pelo storage.
type Event struct {
	ID          string
	RequestID   string
	Endpoint    string
	Path        string
	ContentType string
	Size        int
	Key         string
	CreatedAt   time.Time
}

// Recorder persiste eventos de upload em algum destino externo.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Multi encaminha o evento para todos os destinos e junta os erros.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, rec := range m {
		if rec == nil {
			continue
		}
		if err := rec.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop descarta eventos. Usado quando nenhum destino está configurado.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
