// Package memory provides a mutex-guarded in-memory implementation of the
// ledger repositories for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	"github.com/kolectiva/lets_ledger/internal/utils/pagination"
)

// Repository keeps all ledger state in process memory. WithTransaction
// snapshots the state before running fn and restores it on error, giving the
// same all-or-nothing behavior the SQL store provides.
type Repository struct {
	mu sync.Mutex
	// txMu serializes transactions so a failed fn can restore a consistent
	// snapshot.
	txMu sync.Mutex

	accounts     map[string]domain.Account
	wallets      map[string]domain.Wallet
	tokens       map[string]domain.Token
	transactions []domain.Transaction

	// SaveTokenErr, when set, makes the next SaveToken call fail. Used to
	// exercise rollback paths.
	SaveTokenErr error
}

// NewRepository creates an empty in-memory ledger store.
func NewRepository() *Repository {
	return &Repository{
		accounts: map[string]domain.Account{},
		wallets:  map[string]domain.Wallet{},
		tokens:   map[string]domain.Token{},
	}
}

var _ portsrepo.LedgerRepositoryWithTx = (*Repository)(nil)
var _ portsrepo.AccountRepositoryFacade = (*Repository)(nil)

// AddAccount seeds an account.
func (r *Repository) AddAccount(accountID string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[accountID] = domain.Account{AccountID: accountID, CreatedAt: createdAt}
}

// AddWallet seeds a wallet with the given circulating-unit balance.
func (r *Repository) AddWallet(userID string, units decimal.Decimal, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[userID] = domain.Wallet{
		WalletID:      uuid.NewString(),
		UserID:        userID,
		BalanceUnits:  units,
		BalanceToins:  decimal.Zero,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// AddToken seeds a token verbatim.
func (r *Repository) AddToken(token domain.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.TokenID] = token
}

// TokenByID returns a stored token for assertions.
func (r *Repository) TokenByID(tokenID string) (domain.Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenID]
	return t, ok
}

// AllTransactions returns a copy of the audit log for assertions.
func (r *Repository) AllTransactions() []domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Transaction, len(r.transactions))
	copy(out, r.transactions)
	return out
}

// FindAccountByID retrieves a seeded account.
func (r *Repository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (r *Repository) GetWallet(_ context.Context, userID string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &w, nil
}

func (r *Repository) GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	return r.GetWallet(ctx, userID)
}

func (r *Repository) AdjustWalletBalance(_ context.Context, userID string, delta decimal.Decimal, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return apperrors.NewNotFoundError("wallet for user " + userID + " not found")
	}
	w.BalanceUnits = w.BalanceUnits.Add(delta)
	w.LastUpdatedAt = now
	r.wallets[userID] = w
	return nil
}

// sortTokensFIFO orders tokens soonest-expiry-first with never-expiring
// tokens last, ties broken by creation time then ID for determinism.
func sortTokensFIFO(tokens []domain.Token) {
	sort.Slice(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		switch {
		case a.CaducityDate == nil && b.CaducityDate == nil:
		case a.CaducityDate == nil:
			return false
		case b.CaducityDate == nil:
			return true
		case !a.CaducityDate.Equal(*b.CaducityDate):
			return a.CaducityDate.Before(*b.CaducityDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.TokenID < b.TokenID
	})
}

func (r *Repository) activeTokens(userID string, tokenType *domain.TokenType) []domain.Token {
	out := []domain.Token{}
	for _, t := range r.tokens {
		if t.UserID != userID || t.Status != domain.TokenActive {
			continue
		}
		if tokenType != nil && t.Type != *tokenType {
			continue
		}
		out = append(out, t)
	}
	sortTokensFIFO(out)
	return out
}

func (r *Repository) GetActiveTokens(_ context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeTokens(userID, tokenType), nil
}

func (r *Repository) GetActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error) {
	return r.GetActiveTokens(ctx, userID, tokenType)
}

func (r *Repository) GetExpiredActiveTokensForUpdate(_ context.Context, userID string, tokenType *domain.TokenType, asOf time.Time) ([]domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Token{}
	for _, t := range r.activeTokens(userID, tokenType) {
		if t.CaducityDate != nil && !t.CaducityDate.After(asOf) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Repository) SaveToken(_ context.Context, token domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveTokenErr != nil {
		return r.SaveTokenErr
	}
	r.tokens[token.TokenID] = token
	return nil
}

func (r *Repository) ApplyTokenConsumptions(_ context.Context, consumptions []domain.TokenConsumption, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range consumptions {
		t, ok := r.tokens[c.TokenID]
		if !ok || t.Status != domain.TokenActive {
			return apperrors.NewAppError(409, "token "+c.TokenID+" no longer active", apperrors.ErrConflict)
		}
		if c.Exhausted {
			t.Status = domain.TokenUsed
			t.Amount = decimal.Zero
		} else {
			t.Amount = c.Remaining
		}
		t.LastUpdatedAt = now
		r.tokens[c.TokenID] = t
	}
	return nil
}

func (r *Repository) MarkTokensExpired(_ context.Context, tokenIDs []string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range tokenIDs {
		t, ok := r.tokens[id]
		if !ok || t.Status != domain.TokenActive {
			return apperrors.NewAppError(409, "some tokens were no longer active when expiring", apperrors.ErrConflict)
		}
		t.Status = domain.TokenExpired
		t.LastUpdatedAt = now
		r.tokens[id] = t
	}
	return nil
}

func (r *Repository) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, txn)
	return nil
}

func (r *Repository) ListTransactionsByUser(_ context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	matches := []domain.Transaction{}
	for _, t := range r.transactions {
		isParty := (t.FromUserID != nil && *t.FromUserID == userID) ||
			(t.ToUserID != nil && *t.ToUserID == userID)
		if isParty {
			matches = append(matches, t)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].TransactionID > matches[j].TransactionID
	})

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		filtered := matches[:0]
		for _, t := range matches {
			if t.CreatedAt.Before(lastCreatedAt) ||
				(t.CreatedAt.Equal(lastCreatedAt) && t.TransactionID < lastID) {
				filtered = append(filtered, t)
			}
		}
		matches = filtered
	}

	var token *string
	if len(matches) > limit {
		last := matches[limit-1]
		encoded := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		token = &encoded
		matches = matches[:limit]
	}
	out := make([]domain.Transaction, len(matches))
	copy(out, matches)
	return out, token, nil
}

func (r *Repository) CountRecentCompletedTransactions(_ context.Context, userID string, window int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	completed := []domain.Transaction{}
	for _, t := range r.transactions {
		isParty := (t.FromUserID != nil && *t.FromUserID == userID) ||
			(t.ToUserID != nil && *t.ToUserID == userID)
		if isParty && t.Status == domain.TxnCompleted {
			completed = append(completed, t)
		}
	}
	if len(completed) > window {
		sort.Slice(completed, func(i, j int) bool {
			return completed[i].CreatedAt.After(completed[j].CreatedAt)
		})
		completed = completed[:window]
	}
	return len(completed), nil
}

// WithTransaction snapshots the store, runs fn, and restores the snapshot if
// fn fails.
func (r *Repository) WithTransaction(_ context.Context, fn func(portsrepo.LedgerRepositoryFacade) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snapshot := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type state struct {
	wallets      map[string]domain.Wallet
	tokens       map[string]domain.Token
	transactions []domain.Transaction
}

func (r *Repository) snapshot() state {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := state{
		wallets:      make(map[string]domain.Wallet, len(r.wallets)),
		tokens:       make(map[string]domain.Token, len(r.tokens)),
		transactions: make([]domain.Transaction, len(r.transactions)),
	}
	for k, v := range r.wallets {
		s.wallets[k] = v
	}
	for k, v := range r.tokens {
		s.tokens[k] = v
	}
	copy(s.transactions, r.transactions)
	return s
}

func (r *Repository) restore(s state) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = s.wallets
	r.tokens = s.tokens
	r.transactions = s.transactions
}
