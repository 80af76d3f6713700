package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner é satisfeito por *pgxpool.Pool e *pgx.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// WithTx executa fn numa transação; qualquer erro desfaz tudo.
func WithTx(ctx context.Context, conn TxBeginner, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	// Após Commit o Rollback devolve ErrTxClosed, que é ignorado.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WithLockedTx é WithTx precedido de pg_advisory_xact_lock(key), serializando
// réplicas que sobem ao mesmo tempo. O lock cai junto com a transação.
func WithLockedTx(ctx context.Context, conn TxBeginner, key int64, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return WithTx(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
		return fn(ctx, tx)
	})
}
