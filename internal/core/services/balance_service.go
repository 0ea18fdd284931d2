package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
	"github.com/kolectiva/lets_ledger/internal/middleware"
)

// balanceService computes balance reports from a snapshot of a user's active
// tokens. It never mutates stored state itself; when a sweeper is injected it
// delegates a sweep before reading so stale expired tokens do not linger.
type balanceService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
	sweeper     portssvc.ExpirySvcFacade // nil unless lazy sweeping is enabled
	now         nowFunc
}

// NewBalanceService creates a new balance service. Pass a non-nil sweeper to
// sweep expired tokens lazily before each read.
func NewBalanceService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx, sweeper portssvc.ExpirySvcFacade) portssvc.BalanceSvcFacade {
	return &balanceService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		sweeper:     sweeper,
		now:         defaultNow,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// GetBalance loads the wallet and all ACTIVE tokens (filtered by type when
// requested) and accumulates per-type totals plus near-expiry and expired
// buckets. The expired bucket is diagnostic: those tokens are still ACTIVE
// rows no sweep has deactivated yet.
func (s *balanceService) GetBalance(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.BalanceReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", userID, err)
	}

	if s.sweeper != nil {
		if _, err := s.sweeper.Sweep(ctx, userID, tokenType); err != nil {
			// A failed lazy sweep still leaves the report correct; the
			// expired bucket simply stays populated.
			logger.Warn("Lazy sweep before balance read failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
	}

	wallet, err := s.ledgerRepo.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrWalletNotProvisioned, userID)
		}
		return nil, fmt.Errorf("failed to load wallet for user %s: %w", userID, err)
	}

	tokens, err := s.ledgerRepo.GetActiveTokens(ctx, userID, tokenType)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tokens for user %s: %w", userID, err)
	}

	now := s.now()
	perType := make(map[domain.TokenType]domain.TypeBalance)
	totalActive := decimal.Zero
	for _, token := range tokens {
		tb := perType[token.Type]
		tb.Total = tb.Total.Add(token.Amount)
		if days, expires := token.DaysToExpiry(now); expires {
			switch {
			case days <= 0:
				tb.Expired = tb.Expired.Add(token.Amount)
			case days <= domain.NearExpiryWindowDays:
				tb.Expiring = tb.Expiring.Add(token.Amount)
			}
		}
		perType[token.Type] = tb
		totalActive = totalActive.Add(token.Amount)
	}

	logger.Debug("Balance computed", slog.String("user_id", userID), slog.Int("active_tokens", len(tokens)), slog.String("total_active", totalActive.String()))
	return &domain.BalanceReport{
		UserID:      userID,
		WalletUnits: wallet.BalanceUnits,
		WalletToins: wallet.BalanceToins,
		PerType:     perType,
		TotalActive: totalActive,
	}, nil
}
