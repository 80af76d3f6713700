package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

// SupabaseConfig descreve credenciais e destino da API REST do Supabase Storage.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
	HTTPClient Doer
}

// SupabaseClient encapsula put/get/list na API do Supabase Storage usando a service key.
type SupabaseClient struct {
	httpClient Doer
	baseURL    string
	serviceKey string
	bucket     string
}

// NewSupabaseClient cria o cliente. Configuração incompleta só é reportada
// nas chamadas, como ConfigError.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &SupabaseClient{
		httpClient: client,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		serviceKey: strings.TrimSpace(cfg.ServiceKey),
		bucket:     strings.TrimSpace(cfg.Bucket),
	}
}

// Put grava o objeto com upsert, sobrescrevendo o que existir no caminho.
// Devolve a chave informada pelo backend (campo Key), vazia se ausente.
func (c *SupabaseClient) Put(ctx context.Context, path string, body []byte, contentType string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := c.newRequest(ctx, http.MethodPut, c.objectURL(path), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	status, payload, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", path, err)
	}
	if !isSuccess(status) {
		return "", &BackendError{Op: "put", StatusCode: status, Body: decodeBody(payload)}
	}

	var out struct {
		Key string `json:"Key"`
	}
	_ = json.Unmarshal(payload, &out)
	return out.Key, nil
}

// Get baixa o conteúdo bruto do objeto.
func (c *SupabaseClient) Get(ctx context.Context, path string) ([]byte, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.objectURL(path), nil)
	if err != nil {
		return nil, err
	}

	status, payload, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", path, err)
	}
	if !isSuccess(status) {
		return nil, &BackendError{Op: "get", StatusCode: status, Body: decodeBody(payload)}
	}
	return payload, nil
}

// List devolve os objetos sob o prefixo, em ordem crescente de nome.
// Resposta que não seja array JSON vira BackendError com ErrUnexpectedFormat.
func (c *SupabaseClient) List(ctx context.Context, prefix string, limit int) ([]ObjectRef, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	body := listRequest{
		Prefix: prefix,
		Limit:  limit,
		Offset: 0,
		SortBy: listSort{Column: "name", Order: "asc"},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/object/list/%s", c.baseURL, url.PathEscape(c.bucket))
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, payload, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", prefix, err)
	}
	if !isSuccess(status) {
		return nil, &BackendError{Op: "list", StatusCode: status, Body: decodeBody(payload)}
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &BackendError{Op: "list", StatusCode: status, Body: decodeBody(payload), Err: ErrUnexpectedFormat}
	}

	var refs []ObjectRef
	if err := json.Unmarshal(trimmed, &refs); err != nil {
		return nil, &BackendError{Op: "list", StatusCode: status, Body: decodeBody(payload), Err: ErrUnexpectedFormat}
	}
	if refs == nil {
		refs = []ObjectRef{}
	}
	return refs, nil
}

func (c *SupabaseClient) checkConfig() error {
	if c.baseURL == "" || c.serviceKey == "" {
		return &ConfigError{Fields: []string{"STORAGE_URL", "STORAGE_SERVICE_KEY"}}
	}
	return nil
}

func (c *SupabaseClient) objectURL(path string) string {
	escapedKey := (&url.URL{Path: normalizeKey(path)}).EscapedPath()
	return fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapedKey)
}

func (c *SupabaseClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("X-Request-Id", util.RequestID(ctx))
	return req, nil
}

func (c *SupabaseClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, payload, nil
}

type listRequest struct {
	Prefix string   `json:"prefix"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	SortBy listSort `json:"sortBy"`
}

type listSort struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// decodeBody tenta interpretar o corpo como JSON; caso contrário devolve {"raw": texto}.
func decodeBody(payload []byte) any {
	var v any
	if err := json.Unmarshal(payload, &v); err == nil {
		return v
	}
	return map[string]string{"raw": string(payload)}
}
