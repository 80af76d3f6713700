package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tamanho aproximado máximo do stream; entradas antigas são descartadas.
const defaultStreamMaxLen = 10000

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisRecorder publica eventos num Redis Stream para consumidores externos.
type RedisRecorder struct {
	client streamAdder
	stream string
	maxLen int64
}

func NewRedisRecorder(client streamAdder, stream string) *RedisRecorder {
	return &RedisRecorder{client: client, stream: stream, maxLen: defaultStreamMaxLen}
}

func (r *RedisRecorder) Record(ctx context.Context, event Event) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":           event.ID,
			"request_id":   event.RequestID,
			"endpoint":     event.Endpoint,
			"path":         event.Path,
			"content_type": event.ContentType,
			"size":         event.Size,
			"key":          event.Key,
			"created_at":   event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("audit redis: %w", err)
	}
	return nil
}
