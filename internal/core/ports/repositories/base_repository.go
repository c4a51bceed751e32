package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by SQL-backed repositories that let
// callers group several writes. In-memory repositories do not implement it.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is safe to defer; it ignores an already committed tx.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
