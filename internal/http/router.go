package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pesquisacampo/coleta-gateway/internal/audit"
	"github.com/pesquisacampo/coleta-gateway/internal/auth"
	"github.com/pesquisacampo/coleta-gateway/internal/config"
	httpmiddleware "github.com/pesquisacampo/coleta-gateway/internal/http/middleware"
	"github.com/pesquisacampo/coleta-gateway/internal/http/render"
	"github.com/pesquisacampo/coleta-gateway/internal/metrics"
	"github.com/pesquisacampo/coleta-gateway/internal/participante"
	"github.com/pesquisacampo/coleta-gateway/internal/storage"
	"github.com/pesquisacampo/coleta-gateway/internal/upload"
)

// ReadinessCheck testa uma dependência opcional (Postgres, Redis).
type ReadinessCheck func(ctx context.Context) error

// Dependencies agrupa o que o roteador recebe de fora.
// Storage nil faz o roteador construir o cliente a partir da configuração.
type Dependencies struct {
	Logger  zerolog.Logger
	Storage storage.Client
	Audit   audit.Recorder
	Metrics *metrics.Metrics
	Checks  map[string]ReadinessCheck
}

type Handler struct {
	cfg    *config.Config
	logger zerolog.Logger
	checks map[string]ReadinessCheck
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Dependencies) (http.Handler, error) {
	client := deps.Storage
	if client == nil {
		var err error
		client, err = NewStorageClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	}

	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}
	client = m.Storage(client)

	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}

	logger := deps.Logger
	h := &Handler{cfg: cfg, logger: logger, checks: deps.Checks}

	uploadHandler := upload.NewHandler(
		upload.NewService(client, recorder, logger.With().Str("component", "upload").Logger()),
		logger.With().Str("component", "upload").Logger(),
	)

	participanteLogger := logger.With().Str("component", "participantes").Logger()
	participanteHandler := participante.NewHandler(
		participante.NewService(client, participante.ChainSkips(participante.LogSkips(participanteLogger), m.SkipHook())),
		participanteLogger,
	)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	verifier := auth.NewTokenVerifier(cfg.GatewayTokenHash)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging(logger))
	r.Use(httpmiddleware.Recover(logger))
	r.Use(m.Middleware)

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(limiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", m.Handler())
	})

	r.Group(func(app chi.Router) {
		// limite antes da auth: tentativas com token errado também consomem cota
		app.Use(httpmiddleware.IPRateLimit(limiter))
		app.Use(httpmiddleware.Auth(verifier, logger))

		uploadHandler.RegisterRoutes(app)
		participanteHandler.RegisterRoutes(app)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusNotFound, "rota não encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusMethodNotAllowed, "método não permitido")
	})

	return r, nil
}

// NewStorageClient escolhe o backend conforme STORAGE_PROVIDER.
func NewStorageClient(cfg config.StorageConfig) (storage.Client, error) {
	switch cfg.Provider {
	case "", config.ProviderSupabase:
		return storage.NewSupabaseClient(storage.SupabaseConfig{
			URL:        cfg.URL,
			ServiceKey: cfg.ServiceKey,
			Bucket:     cfg.Bucket,
			Timeout:    cfg.Timeout,
		}), nil
	case config.ProviderS3:
		return storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return nil, fmt.Errorf("provedor %s não suportado", cfg.Provider)
	}
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready executa as verificações configuradas em paralelo.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var g errgroup.Group
	for i, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			if err := check(ctx); err != nil {
				results[i] = err.Error()
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		details := make(map[string]string, len(names))
		for i, name := range names {
			details[name] = results[i]
		}
		h.logger.Warn().Err(err).Interface("checks", details).Msg("readiness falhou")
		render.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":  "dependências indisponíveis",
			"checks": details,
		})
		return
	}

	render.JSON(w, http.StatusOK, map[string]bool{"ready": true})
}
