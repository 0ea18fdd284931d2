package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	"github.com/kolectiva/lets_ledger/internal/models"
	"github.com/kolectiva/lets_ledger/internal/utils/mapping"
	"github.com/kolectiva/lets_ledger/internal/utils/pagination"
)

// PgxLedgerRepository persists wallets, tokens and the transaction audit log.
// The same type serves pooled reads and transaction-scoped mutations: inside
// WithTransaction the db field is the open pgx.Tx.
type PgxLedgerRepository struct {
	BaseRepository
	db queryRunner
}

// newPgxLedgerRepository creates a new repository for ledger data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// WithTransaction executes fn against a transaction-scoped copy of the
// repository. Commit on nil, rollback otherwise; isolation violations map to
// apperrors.ErrConflict so callers can retry.
func (r *PgxLedgerRepository) WithTransaction(ctx context.Context, fn func(portsrepo.LedgerRepositoryFacade) error) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	// Rollback after a successful commit is a harmless no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	txRepo := &PgxLedgerRepository{BaseRepository: r.BaseRepository, db: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateConflict(err, "failed to commit transaction")
	}
	return nil
}

const walletColumns = `wallet_id, user_id, balance_units, balance_toins, created_at, last_updated_at`

func (r *PgxLedgerRepository) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var m models.Wallet
	err := row.Scan(
		&m.WalletID,
		&m.UserID,
		&m.BalanceUnits,
		&m.BalanceToins,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, translateConflict(err, "failed to scan wallet row")
	}
	wallet := mapping.ToDomainWallet(m)
	return &wallet, nil
}

// GetWallet retrieves a user's wallet.
func (r *PgxLedgerRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1;`
	return r.scanWallet(r.db.QueryRow(ctx, query, userID))
}

// GetWalletForUpdate retrieves the wallet with its row locked for the
// remainder of the surrounding transaction.
func (r *PgxLedgerRepository) GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE;`
	return r.scanWallet(r.db.QueryRow(ctx, query, userID))
}

const tokenColumns = `token_id, user_id, amount, token_type, status, source, caducity_date, created_at, last_updated_at`

// Tokens are always consumed soonest-expiry-first, so every active-token
// read shares this ordering. Never-expiring tokens sort last.
const tokenOrdering = `ORDER BY caducity_date ASC NULLS LAST, created_at ASC`

func (r *PgxLedgerRepository) queryTokens(ctx context.Context, query string, args ...any) ([]domain.Token, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateConflict(err, "failed to query tokens")
	}
	defer rows.Close()

	tokens := []models.Token{}
	for rows.Next() {
		var m models.Token
		var caducity *time.Time
		if err := rows.Scan(
			&m.TokenID,
			&m.UserID,
			&m.Amount,
			&m.TokenType,
			&m.Status,
			&m.Source,
			&caducity,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		); err != nil {
			return nil, translateConflict(err, "failed to scan token row")
		}
		m.CaducityDate = caducity
		tokens = append(tokens, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateConflict(err, "error iterating token rows")
	}

	return mapping.ToDomainTokenSlice(tokens), nil
}

// GetActiveTokens lists a user's ACTIVE tokens ordered by caducity date
// ascending with never-expiring tokens last.
func (r *PgxLedgerRepository) GetActiveTokens(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error) {
	if tokenType != nil {
		query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 AND status = $2 AND token_type = $3 ` + tokenOrdering + `;`
		return r.queryTokens(ctx, query, userID, string(domain.TokenActive), string(*tokenType))
	}
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 AND status = $2 ` + tokenOrdering + `;`
	return r.queryTokens(ctx, query, userID, string(domain.TokenActive))
}

// GetActiveTokensForUpdate is GetActiveTokens with the rows locked for the
// remainder of the surrounding transaction.
func (r *PgxLedgerRepository) GetActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error) {
	if tokenType != nil {
		query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 AND status = $2 AND token_type = $3 ` + tokenOrdering + ` FOR UPDATE;`
		return r.queryTokens(ctx, query, userID, string(domain.TokenActive), string(*tokenType))
	}
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 AND status = $2 ` + tokenOrdering + ` FOR UPDATE;`
	return r.queryTokens(ctx, query, userID, string(domain.TokenActive))
}

// GetExpiredActiveTokensForUpdate lists and locks the ACTIVE tokens whose
// caducity date is at or before asOf.
func (r *PgxLedgerRepository) GetExpiredActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType, asOf time.Time) ([]domain.Token, error) {
	if tokenType != nil {
		query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 AND status = $2 AND token_type = $3 AND caducity_date IS NOT NULL AND caducity_date <= $4 ` + tokenOrdering + ` FOR UPDATE;`
		return r.queryTokens(ctx, query, userID, string(domain.TokenActive), string(*tokenType), asOf)
	}
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 AND status = $2 AND caducity_date IS NOT NULL AND caducity_date <= $3 ` + tokenOrdering + ` FOR UPDATE;`
	return r.queryTokens(ctx, query, userID, string(domain.TokenActive), asOf)
}

// SaveToken inserts a new token.
func (r *PgxLedgerRepository) SaveToken(ctx context.Context, token domain.Token) error {
	m := mapping.ToModelToken(token)
	query := `
		INSERT INTO tokens (token_id, user_id, amount, token_type, status, source, caducity_date, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		m.TokenID,
		m.UserID,
		m.Amount,
		m.TokenType,
		m.Status,
		m.Source,
		m.CaducityDate,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return translateConflict(err, "failed to insert token "+m.TokenID)
	}
	return nil
}

// ApplyTokenConsumptions applies a FIFO walk outcome in one batch: exhausted
// tokens become USED, the rest are reduced in place. Every statement guards
// on status = ACTIVE; a miss means another transaction touched the token
// after our snapshot and the whole operation must be retried.
func (r *PgxLedgerRepository) ApplyTokenConsumptions(ctx context.Context, consumptions []domain.TokenConsumption, now time.Time) error {
	if len(consumptions) == 0 {
		return nil
	}

	markUsed := `UPDATE tokens SET status = $2, amount = 0, last_updated_at = $3 WHERE token_id = $1 AND status = $4;`
	reduce := `UPDATE tokens SET amount = $2, last_updated_at = $3 WHERE token_id = $1 AND status = $4;`

	batch := &pgx.Batch{}
	for _, c := range consumptions {
		if c.Exhausted {
			batch.Queue(markUsed, c.TokenID, string(domain.TokenUsed), now, string(domain.TokenActive))
		} else {
			batch.Queue(reduce, c.TokenID, c.Remaining, now, string(domain.TokenActive))
		}
	}

	br := r.db.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = translateConflict(err, "failed to consume token "+consumptions[i].TokenID)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = apperrors.NewAppError(409, "token "+consumptions[i].TokenID+" no longer active", apperrors.ErrConflict)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = translateConflict(err, "failed to close token consumption batch")
	}
	return batchErr
}

// MarkTokensExpired transitions the given ACTIVE tokens to EXPIRED.
func (r *PgxLedgerRepository) MarkTokensExpired(ctx context.Context, tokenIDs []string, now time.Time) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	query := `UPDATE tokens SET status = $2, last_updated_at = $3 WHERE token_id = ANY($1) AND status = $4;`
	ct, err := r.db.Exec(ctx, query, tokenIDs, string(domain.TokenExpired), now, string(domain.TokenActive))
	if err != nil {
		return translateConflict(err, "failed to expire tokens")
	}
	if ct.RowsAffected() != int64(len(tokenIDs)) {
		return apperrors.NewAppError(409, "some tokens were no longer active when expiring", apperrors.ErrConflict)
	}
	return nil
}

// AdjustWalletBalance adds delta to the wallet's circulating-unit balance.
func (r *PgxLedgerRepository) AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal, now time.Time) error {
	query := `UPDATE wallets SET balance_units = balance_units + $2, last_updated_at = $3 WHERE user_id = $1;`
	ct, err := r.db.Exec(ctx, query, userID, delta, now)
	if err != nil {
		return translateConflict(err, "failed to adjust wallet balance for user "+userID)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("wallet for user " + userID + " not found")
	}
	return nil
}

const transactionColumns = `transaction_id, from_user_id, to_user_id, amount, token_type, transaction_type, status, description, created_at`

// SaveTransaction appends an audit record.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.FromUserID,
		m.ToUserID,
		m.Amount,
		m.TokenType,
		m.TransactionType,
		m.Status,
		m.Description,
		m.CreatedAt,
	)
	if err != nil {
		return translateConflict(err, "failed to insert transaction "+m.TransactionID)
	}
	return nil
}

// ListTransactionsByUser retrieves transactions where the user is either
// party, newest first, with cursor pagination on (created_at, transaction_id).
func (r *PgxLedgerRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (from_user_id = $1 OR to_user_id = $1)
	`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	args := []any{userID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, translateConflict(err, "failed to query transactions for user "+userID)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		var m models.Transaction
		var fromID, toID sql.NullString
		if err := rows.Scan(
			&m.TransactionID,
			&fromID,
			&toID,
			&m.Amount,
			&m.TokenType,
			&m.TransactionType,
			&m.Status,
			&m.Description,
			&m.CreatedAt,
		); err != nil {
			return nil, nil, translateConflict(err, "failed to scan transaction row for user "+userID)
		}
		if fromID.Valid {
			m.FromUserID = &fromID.String
		}
		if toID.Valid {
			m.ToUserID = &toID.String
		}
		transactions = append(transactions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, translateConflict(err, "error iterating transaction rows for user "+userID)
	}

	var nextTokenVal *string
	results := transactions
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		results = transactions[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// CountRecentCompletedTransactions counts the user's most recent COMPLETED
// transactions, capped at window.
func (r *PgxLedgerRepository) CountRecentCompletedTransactions(ctx context.Context, userID string, window int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM (
			SELECT 1
			FROM transactions
			WHERE (from_user_id = $1 OR to_user_id = $1) AND status = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent;
	`
	var count int
	err := r.db.QueryRow(ctx, query, userID, string(domain.TxnCompleted), window).Scan(&count)
	if err != nil {
		return 0, translateConflict(err, "failed to count completed transactions for user "+userID)
	}
	return count, nil
}
