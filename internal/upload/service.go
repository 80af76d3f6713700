package upload

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pesquisacampo/coleta-gateway/internal/audit"
	"github.com/pesquisacampo/coleta-gateway/internal/storage"
	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

// Service repassa uploads ao storage e registra auditoria.
type Service struct {
	storage storage.Client
	audit   audit.Recorder
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(client storage.Client, recorder audit.Recorder, logger zerolog.Logger) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		storage: client,
		audit:   recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload grava com upsert e devolve a chave informada pelo storage.
// Falha na auditoria é só logada; não altera o resultado do upload.
func (s *Service) Upload(ctx context.Context, endpoint Endpoint, req Request) (string, error) {
	key, err := s.storage.Put(ctx, req.Path, req.Content, req.ContentType)
	if err != nil {
		return "", err
	}

	event := audit.Event{
		ID:          util.NewID(),
		RequestID:   util.RequestID(ctx),
		Endpoint:    endpoint.Name,
		Path:        req.Path,
		ContentType: req.ContentType,
		Size:        len(req.Content),
		Key:         key,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("path", req.Path).Str("endpoint", endpoint.Name).Msg("auditoria de upload falhou")
	}

	return key, nil
}
