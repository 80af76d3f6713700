package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pesquisacampo/coleta-gateway/internal/participante"
	"github.com/pesquisacampo/coleta-gateway/internal/storage"
)

type stubStorage struct {
	err error
}

func (s stubStorage) Put(ctx context.Context, path string, body []byte, contentType string) (string, error) {
	return "k", s.err
}

func (s stubStorage) Get(ctx context.Context, path string) ([]byte, error) {
	return nil, s.err
}

func (s stubStorage) List(ctx context.Context, prefix string, limit int) ([]storage.ObjectRef, error) {
	return nil, s.err
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/list-participantes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/list-participantes", nil))

	got := testutil.ToFloat64(m.requests.WithLabelValues("/list-participantes", http.MethodGet, "418"))
	if got != 1 {
		t.Fatalf("expected 1 request got %v", got)
	}
}

func TestStorageResults(t *testing.T) {
	m := New()
	ctx := context.Background()

	_, _ = m.Storage(stubStorage{}).Put(ctx, "a", nil, "")
	_, _ = m.Storage(stubStorage{err: &storage.ConfigError{}}).Get(ctx, "a")
	_, _ = m.Storage(stubStorage{err: &storage.BackendError{Op: "list"}}).List(ctx, "p", 1)
	_, _ = m.Storage(stubStorage{err: errors.New("eof")}).Get(ctx, "a")

	cases := map[[2]string]float64{
		{"put", "ok"}:              1,
		{"get", "config_error"}:    1,
		{"list", "backend_error"}:  1,
		{"get", "transport_error"}: 1,
	}
	for labels, want := range cases {
		if got := testutil.ToFloat64(m.storageCalls.WithLabelValues(labels[0], labels[1])); got != want {
			t.Fatalf("%v: expected %v got %v", labels, want, got)
		}
	}
}

func TestSkipHookAndHandler(t *testing.T) {
	m := New()
	hook := m.SkipHook()
	hook(context.Background(), "participantes/a/dados.txt", participante.SkipFetch, errors.New("x"))
	hook(context.Background(), "participantes/b/dados.txt", participante.SkipFetch, errors.New("x"))

	if got := testutil.ToFloat64(m.participanteSkip.WithLabelValues("fetch")); got != 2 {
		t.Fatalf("expected 2 skips got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "coleta_gateway_participantes_skipped_total") {
		t.Fatal("expected skipped counter in exposition")
	}
}
