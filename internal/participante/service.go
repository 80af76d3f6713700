package participante

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pesquisacampo/coleta-gateway/internal/storage"
	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

// SkipHook é chamado para cada dados.txt descartado durante a listagem.
type SkipHook func(ctx context.Context, key string, reason SkipReason, err error)

// Service agrega os participantes gravados no storage.
type Service struct {
	storage storage.Client
	onSkip  SkipHook
}

func NewService(client storage.Client, onSkip SkipHook) *Service {
	return &Service{storage: client, onSkip: onSkip}
}

// List percorre participantes/, baixa cada .../dados.txt em sequência e devolve
// os registros válidos ordenados por nome (sem diferenciar maiúsculas).
// Só a falha da listagem interrompe; falhas por arquivo viram SkipHook.
func (s *Service) List(ctx context.Context) ([]Participante, error) {
	refs, err := s.storage.List(ctx, Prefix, storage.DefaultListLimit)
	if err != nil {
		return nil, err
	}

	participantes := make([]Participante, 0, len(refs))
	for _, ref := range refs {
		if ref.Name == "" {
			continue
		}
		key := Prefix + ref.Name
		if !strings.HasSuffix(key, RecordSuffix) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.storage.Get(ctx, key)
		if err != nil {
			s.skip(ctx, key, SkipFetch, err)
			continue
		}

		p, err := Parse(util.ValidUTF8(data))
		if err != nil {
			s.skip(ctx, key, SkipInvalidCPF, err)
			continue
		}
		participantes = append(participantes, p)
	}

	slices.SortFunc(participantes, func(a, b Participante) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return participantes, nil
}

func (s *Service) skip(ctx context.Context, key string, reason SkipReason, err error) {
	if s.onSkip != nil {
		s.onSkip(ctx, key, reason, err)
	}
}

// LogSkips registra cada descarte em nível warn.
func LogSkips(logger zerolog.Logger) SkipHook {
	return func(ctx context.Context, key string, reason SkipReason, err error) {
		logger.Warn().Err(err).Str("key", key).Str("reason", string(reason)).
			Str("request_id", util.RequestID(ctx)).Msg("participante ignorado")
	}
}

// ChainSkips combina vários hooks num só.
func ChainSkips(hooks ...SkipHook) SkipHook {
	return func(ctx context.Context, key string, reason SkipReason, err error) {
		for _, hook := range hooks {
			if hook != nil {
				hook(ctx, key, reason, err)
			}
		}
	}
}
