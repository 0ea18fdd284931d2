package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider constructs the Postgres-backed repositories over a
// shared connection pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:  newPgxLedgerRepository(pool),
		AccountRepo: newPgxAccountRepository(pool),
	}
}
