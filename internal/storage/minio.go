package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig descreve um endpoint compatível com S3 (MinIO, R2, AWS).
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioClient implementa Client sobre minio-go para backends S3.
type MinioClient struct {
	client *minio.Client
	bucket string
}

// NewMinioClient cria cliente S3. Não verifica a existência do bucket.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage: bucket obrigatório")
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("storage: endpoint inválido: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

// Put sobrescreve o objeto e devolve "bucket/chave", no mesmo formato do Supabase.
func (c *MinioClient) Put(ctx context.Context, path string, body []byte, contentType string) (string, error) {
	key := normalizeKey(path)
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", translateMinioError("put", err)
	}
	return c.bucket + "/" + info.Key, nil
}

// Get baixa o objeto inteiro em memória.
func (c *MinioClient) Get(ctx context.Context, path string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, normalizeKey(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinioError("get", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, translateMinioError("get", err)
	}
	return data, nil
}

// List percorre recursivamente o prefixo e devolve nomes relativos a ele.
func (c *MinioClient) List(ctx context.Context, prefix string, limit int) ([]ObjectRef, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	// sair do laço encerra a listagem; não há goroutine por trás do iterador
	refs := make([]ObjectRef, 0)
	for obj := range c.client.ListObjectsIter(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, translateMinioError("list", obj.Err)
		}
		name := relativeName(prefix, obj.Key)
		if name == "" {
			continue
		}
		refs = append(refs, ObjectRef{Name: name})
		if len(refs) >= limit {
			return refs, nil
		}
	}
	// o iterador termina em silêncio quando o contexto é cancelado
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return refs, nil
}

func relativeName(prefix, key string) string {
	return strings.TrimPrefix(key, prefix)
}

func translateMinioError(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return fmt.Errorf("storage: %s: %w", op, err)
	}
	return &BackendError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body: map[string]string{
			"code":    resp.Code,
			"message": resp.Message,
		},
	}
}

// Aceita "minio:9000" ou "http(s)://minio:9000"; sem esquema vale useSSL.
func normaliseEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("endpoint vazio")
	}

	if !strings.Contains(raw, "://") {
		return strings.TrimRight(raw, "/"), useSSL, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, errors.New("endpoint sem host")
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, errors.New("endpoint não pode conter caminho")
	}
	return u.Host, u.Scheme == "https", nil
}
