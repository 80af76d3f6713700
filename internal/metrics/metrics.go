package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pesquisacampo/coleta-gateway/internal/participante"
	"github.com/pesquisacampo/coleta-gateway/internal/storage"
)

const namespace = "coleta_gateway"

// Metrics mantém um registry próprio com métricas HTTP, de storage e de descartes.
type Metrics struct {
	reg              *prometheus.Registry
	inflight         prometheus.Gauge
	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	storageCalls     *prometheus.CounterVec
	storageLatency   *prometheus.HistogramVec
	participanteSkip *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Requisições HTTP em andamento.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total de requisições HTTP por rota, método e status.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latência das requisições HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		storageCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "calls_total",
			Help:      "Chamadas ao storage por operação e resultado.",
		}, []string{"op", "result"}),
		storageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "call_duration_seconds",
			Help:      "Latência das chamadas ao storage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		participanteSkip: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "participantes",
			Name:      "skipped_total",
			Help:      "Arquivos dados.txt ignorados na listagem, por motivo.",
		}, []string{"reason"}),
		reg: reg,
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inflight,
		m.requests,
		m.latency,
		m.storageCalls,
		m.storageLatency,
		m.participanteSkip,
	)
	return m
}

// Handler serve /metrics a partir do registry interno.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry expõe o registry para testes e coletores extras.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Middleware mede requisições usando o padrão de rota do chi como rótulo.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// SkipHook conta descartes da listagem de participantes.
func (m *Metrics) SkipHook() participante.SkipHook {
	return func(_ context.Context, _ string, reason participante.SkipReason, _ error) {
		m.participanteSkip.WithLabelValues(string(reason)).Inc()
	}
}

// Storage embrulha o cliente registrando contagem e latência por operação.
func (m *Metrics) Storage(next storage.Client) storage.Client {
	return &instrumentedStorage{next: next, m: m}
}

type instrumentedStorage struct {
	next storage.Client
	m    *Metrics
}

func (s *instrumentedStorage) Put(ctx context.Context, path string, body []byte, contentType string) (string, error) {
	start := time.Now()
	key, err := s.next.Put(ctx, path, body, contentType)
	s.m.observeStorage("put", start, err)
	return key, err
}

func (s *instrumentedStorage) Get(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Get(ctx, path)
	s.m.observeStorage("get", start, err)
	return data, err
}

func (s *instrumentedStorage) List(ctx context.Context, prefix string, limit int) ([]storage.ObjectRef, error) {
	start := time.Now()
	refs, err := s.next.List(ctx, prefix, limit)
	s.m.observeStorage("list", start, err)
	return refs, err
}

func (m *Metrics) observeStorage(op string, start time.Time, err error) {
	m.storageLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.storageCalls.WithLabelValues(op, storageResult(err)).Inc()
}

func storageResult(err error) string {
	if err == nil {
		return "ok"
	}
	var configErr *storage.ConfigError
	if errors.As(err, &configErr) {
		return "config_error"
	}
	var backendErr *storage.BackendError
	if errors.As(err, &backendErr) {
		return "backend_error"
	}
	return "transport_error"
}
