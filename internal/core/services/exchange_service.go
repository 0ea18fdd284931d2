package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
	"github.com/kolectiva/lets_ledger/internal/middleware"
)

// DefaultExchangeTokenTTL is the uniform expiry assigned to tokens minted for
// the receiver of an exchange. The minted token never inherits the mixed
// expiries of the consumed ones; transfer resets freshness.
const DefaultExchangeTokenTTL = 365 * 24 * time.Hour

var (
	ErrSameAccount = errors.New("sender and receiver must be different accounts")
)

// exchangeService validates and executes value transfers. It owns the
// FIFO token-consumption walk and the atomic write set.
type exchangeService struct {
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	balanceSvc  portssvc.BalanceSvcFacade
	tokenTTL    time.Duration
	now         nowFunc
}

// NewExchangeService creates a new exchange service. A non-positive tokenTTL
// falls back to DefaultExchangeTokenTTL.
func NewExchangeService(ledgerRepo portsrepo.LedgerRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, balanceSvc portssvc.BalanceSvcFacade, tokenTTL time.Duration) portssvc.ExchangeSvcFacade {
	if tokenTTL <= 0 {
		tokenTTL = DefaultExchangeTokenTTL
	}
	return &exchangeService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		balanceSvc:  balanceSvc,
		tokenTTL:    tokenTTL,
		now:         defaultNow,
	}
}

var _ portssvc.ExchangeSvcFacade = (*exchangeService)(nil)

// Exchange transfers amount from one account to the other. Sender tokens are
// consumed soonest-expiry-first; the receiver gets a single fresh token and
// both wallets are reconciled, all inside one store transaction. Isolation
// conflicts re-execute the whole sequence up to maxTxnRetries times.
func (s *exchangeService) Exchange(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange amount must be positive", apperrors.ErrValidation)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSameAccount)
	}

	for _, userID := range []string{fromUserID, toUserID} {
		if _, err := s.accountRepo.FindAccountByID(ctx, userID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
			}
			return nil, fmt.Errorf("failed to find account %s: %w", userID, err)
		}
	}

	// Cheap sufficiency precheck against an unlocked snapshot. The locked
	// snapshot inside the transaction remains authoritative.
	tokenType := domain.CirculatingUnit
	report, err := s.balanceSvc.GetBalance(ctx, fromUserID, &tokenType)
	if err != nil {
		return nil, err
	}
	if report.TotalActive.LessThan(amount) {
		return nil, fmt.Errorf("%w: have %s, need %s", apperrors.ErrInsufficientBalance, report.TotalActive.String(), amount.String())
	}

	var txn *domain.Transaction
	for attempt := 1; ; attempt++ {
		txn, err = s.execute(ctx, fromUserID, toUserID, amount, description)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) || attempt >= maxTxnRetries {
			break
		}
		logger.Warn("Retrying exchange after isolation conflict", slog.Int("attempt", attempt), slog.String("from_user_id", fromUserID))
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Exchange completed", slog.String("transaction_id", txn.TransactionID), slog.String("from_user_id", fromUserID), slog.String("to_user_id", toUserID), slog.String("amount", amount.String()))
	return txn, nil
}

// execute runs one attempt of the exchange write set atomically.
func (s *exchangeService) execute(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	now := s.now()
	var txn domain.Transaction

	err := s.ledgerRepo.WithTransaction(ctx, func(r portsrepo.LedgerRepositoryFacade) error {
		// Lock both wallets in deterministic order to avoid lock inversion
		// between concurrent exchanges in opposite directions.
		lockOrder := []string{fromUserID, toUserID}
		sort.Strings(lockOrder)
		for _, userID := range lockOrder {
			if _, err := r.GetWalletForUpdate(ctx, userID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: user %s", apperrors.ErrWalletNotProvisioned, userID)
				}
				return fmt.Errorf("failed to lock wallet for user %s: %w", userID, err)
			}
		}

		tokenType := domain.CirculatingUnit
		tokens, err := r.GetActiveTokensForUpdate(ctx, fromUserID, &tokenType)
		if err != nil {
			return fmt.Errorf("failed to lock sender tokens: %w", err)
		}

		consumptions, consumed, err := planConsumption(tokens, amount)
		if err != nil {
			return err
		}
		if err := r.ApplyTokenConsumptions(ctx, consumptions, now); err != nil {
			return fmt.Errorf("failed to consume sender tokens: %w", err)
		}

		if err := r.AdjustWalletBalance(ctx, fromUserID, consumed.Neg(), now); err != nil {
			return fmt.Errorf("failed to debit sender wallet: %w", err)
		}
		if err := r.AdjustWalletBalance(ctx, toUserID, consumed, now); err != nil {
			return fmt.Errorf("failed to credit receiver wallet: %w", err)
		}

		caducity := now.Add(s.tokenTTL)
		minted := domain.Token{
			TokenID:       uuid.NewString(),
			UserID:        toUserID,
			Amount:        amount,
			Type:          domain.CirculatingUnit,
			Status:        domain.TokenActive,
			Source:        domain.SourceConversion,
			CaducityDate:  &caducity,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := r.SaveToken(ctx, minted); err != nil {
			return fmt.Errorf("failed to mint receiver token: %w", err)
		}

		txn = domain.Transaction{
			TransactionID: uuid.NewString(),
			FromUserID:    &fromUserID,
			ToUserID:      &toUserID,
			Amount:        amount,
			TokenType:     domain.CirculatingUnit,
			Kind:          domain.TxnExchange,
			Status:        domain.TxnCompleted,
			Description:   description,
			CreatedAt:     now,
		}
		if err := r.SaveTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to record exchange transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// planConsumption walks tokens (already ordered soonest-expiry-first) and
// decides how much to take from each until `amount` is covered. Returns the
// consumption plan and the total actually covered.
func planConsumption(tokens []domain.Token, amount decimal.Decimal) ([]domain.TokenConsumption, decimal.Decimal, error) {
	remaining := amount
	consumptions := make([]domain.TokenConsumption, 0, len(tokens))
	for _, token := range tokens {
		if remaining.IsZero() {
			break
		}
		deduct := decimal.Min(token.Amount, remaining)
		consumptions = append(consumptions, domain.TokenConsumption{
			TokenID:   token.TokenID,
			Deduct:    deduct,
			Remaining: token.Amount.Sub(deduct),
			Exhausted: deduct.Equal(token.Amount),
		})
		remaining = remaining.Sub(deduct)
	}
	if remaining.GreaterThan(decimal.Zero) {
		covered := amount.Sub(remaining)
		return nil, decimal.Zero, fmt.Errorf("%w: have %s, need %s", apperrors.ErrInsufficientBalance, covered.String(), amount.String())
	}
	return consumptions, amount, nil
}
