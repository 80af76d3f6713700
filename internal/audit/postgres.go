package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pesquisacampo/coleta-gateway/internal/db"
)

const insertEventSQL = `
INSERT INTO upload_audit (id, request_id, endpoint, path, content_type, size_bytes, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS upload_audit (
		id UUID PRIMARY KEY,
		request_id TEXT NOT NULL DEFAULT '',
		endpoint TEXT NOT NULL,
		path TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		storage_key TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS upload_audit_path_idx ON upload_audit (path)`,
	`CREATE INDEX IF NOT EXISTS upload_audit_created_at_idx ON upload_audit (created_at DESC)`,
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder grava eventos na tabela upload_audit.
type PostgresRecorder struct {
	db execer
}

func NewPostgresRecorder(conn execer) *PostgresRecorder {
	return &PostgresRecorder{db: conn}
}

func (r *PostgresRecorder) Record(ctx context.Context, event Event) error {
	_, err := r.db.Exec(ctx, insertEventSQL,
		event.ID,
		event.RequestID,
		event.Endpoint,
		event.Path,
		event.ContentType,
		event.Size,
		event.Key,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit postgres: %w", err)
	}
	return nil
}

// Chave do advisory lock usado na criação do schema.
const schemaLockKey int64 = 0x636f6c657461

// EnsureSchema cria a tabela e índices de auditoria numa única transação.
func EnsureSchema(ctx context.Context, conn db.TxBeginner) error {
	return db.WithLockedTx(ctx, conn, schemaLockKey, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("audit schema: %w", err)
			}
		}
		return nil
	})
}
