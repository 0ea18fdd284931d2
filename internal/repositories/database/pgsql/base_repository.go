package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
)

// queryRunner is the subset of pgx satisfied by both *pgxpool.Pool and
// pgx.Tx, letting one repository serve pooled and transaction-scoped calls.
type queryRunner interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// serializationFailure and deadlockDetected are the SQLSTATEs Postgres raises
// when concurrent transactions conflict; both are safe to retry.
const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// translateConflict maps retryable isolation violations to ErrConflict and
// wraps everything else as an internal store failure.
func translateConflict(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected {
			return apperrors.NewAppError(409, message, apperrors.ErrConflict)
		}
	}
	return apperrors.NewAppError(500, message, err)
}
