package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// WalletReader defines read operations for wallet data.
type WalletReader interface {
	// GetWallet retrieves a user's wallet. Returns apperrors.ErrNotFound if
	// no wallet row exists for the user.
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)

	// GetWalletForUpdate retrieves the wallet with a row lock held until the
	// surrounding transaction ends. Only valid inside WithTransaction.
	GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error)
}

// WalletWriter defines write operations for wallet data.
type WalletWriter interface {
	// AdjustWalletBalance adds delta (which may be negative) to the wallet's
	// circulating-unit balance.
	AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal, now time.Time) error
}

// TokenReader defines read operations for token data.
type TokenReader interface {
	// GetActiveTokens lists a user's ACTIVE tokens, optionally filtered by
	// type, ordered by caducity date ascending with never-expiring tokens
	// last.
	GetActiveTokens(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error)

	// GetActiveTokensForUpdate is GetActiveTokens with row locks held until
	// the surrounding transaction ends. Only valid inside WithTransaction.
	GetActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error)

	// GetExpiredActiveTokensForUpdate lists (and locks) the user's ACTIVE
	// tokens whose caducity date is at or before asOf. Only valid inside
	// WithTransaction.
	GetExpiredActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType, asOf time.Time) ([]domain.Token, error)
}

// TokenWriter defines write operations for token data.
type TokenWriter interface {
	// SaveToken inserts a new token.
	SaveToken(ctx context.Context, token domain.Token) error

	// ApplyTokenConsumptions applies a FIFO walk outcome: exhausted tokens
	// become USED, the rest have their amount reduced in place.
	ApplyTokenConsumptions(ctx context.Context, consumptions []domain.TokenConsumption, now time.Time) error

	// MarkTokensExpired transitions the given ACTIVE tokens to EXPIRED.
	MarkTokensExpired(ctx context.Context, tokenIDs []string, now time.Time) error
}

// TransactionReader defines read operations for the transaction audit log.
type TransactionReader interface {
	// ListTransactionsByUser retrieves transactions where the user is either
	// party, newest first, using token-based pagination. It returns the
	// transactions, a token for the next page, and an error.
	ListTransactionsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// CountRecentCompletedTransactions counts the user's most recent
	// COMPLETED transactions, capped at window.
	CountRecentCompletedTransactions(ctx context.Context, userID string, window int) (int, error)
}

// TransactionWriter defines write operations for the transaction audit log.
type TransactionWriter interface {
	// SaveTransaction appends an audit record.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// LedgerRepositoryFacade combines every ledger store operation.
type LedgerRepositoryFacade interface {
	WalletReader
	WalletWriter
	TokenReader
	TokenWriter
	TransactionReader
	TransactionWriter
}

// TransactionManager runs a function inside one atomic store transaction.
type TransactionManager interface {
	// WithTransaction executes fn against a transaction-scoped repository.
	// The transaction commits when fn returns nil and rolls back otherwise;
	// isolation conflicts surface as apperrors.ErrConflict.
	WithTransaction(ctx context.Context, fn func(r LedgerRepositoryFacade) error) error
}

// LedgerRepositoryWithTx extends the facade with transaction capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
