package repositories

import (
	"context"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// AccountReader defines the read-only view of the external account module the
// ledger core depends on.
type AccountReader interface {
	// FindAccountByID retrieves an account's identity slice by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
}
