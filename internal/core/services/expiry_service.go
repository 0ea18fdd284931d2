package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
	"github.com/kolectiva/lets_ledger/internal/middleware"
)

// expiryService sweeps tokens past their caducity date out of circulation and
// reconciles the wallet. A sweep that matches nothing is a no-op, which makes
// back-to-back sweeps idempotent: swept tokens are EXPIRED and no longer
// match.
type expiryService struct {
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	now         nowFunc
}

// NewExpiryService creates a new expiry sweep service.
func NewExpiryService(ledgerRepo portsrepo.LedgerRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade) portssvc.ExpirySvcFacade {
	return &expiryService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		now:         defaultNow,
	}
}

var _ portssvc.ExpirySvcFacade = (*expiryService)(nil)

// Sweep deactivates the user's ACTIVE tokens whose caducity date has passed,
// decrements the wallet by their sum, and records one EXPIRE write-off
// transaction, all atomically. Isolation conflicts retry the whole sequence.
func (s *expiryService) Sweep(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.SweepResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", userID, err)
	}

	var result *domain.SweepResult
	var err error
	for attempt := 1; ; attempt++ {
		result, err = s.execute(ctx, userID, tokenType)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) || attempt >= maxTxnRetries {
			break
		}
		logger.Warn("Retrying sweep after isolation conflict", slog.Int("attempt", attempt), slog.String("user_id", userID))
	}
	if err != nil {
		return nil, err
	}

	if result.ExpiredCount > 0 {
		logger.Info("Expired tokens swept", slog.String("user_id", userID), slog.Int("expired_count", result.ExpiredCount), slog.String("total_expired", result.TotalExpiredAmount.String()))
	}
	return result, nil
}

func (s *expiryService) execute(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.SweepResult, error) {
	now := s.now()
	result := &domain.SweepResult{TotalExpiredAmount: decimal.Zero}

	err := s.ledgerRepo.WithTransaction(ctx, func(r portsrepo.LedgerRepositoryFacade) error {
		if _, err := r.GetWalletForUpdate(ctx, userID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: no wallet for user %s", apperrors.ErrNotFound, userID)
			}
			return fmt.Errorf("failed to lock wallet for user %s: %w", userID, err)
		}

		expired, err := r.GetExpiredActiveTokensForUpdate(ctx, userID, tokenType, now)
		if err != nil {
			return fmt.Errorf("failed to select expired tokens: %w", err)
		}
		if len(expired) == 0 {
			return nil
		}

		tokenIDs := make([]string, len(expired))
		total := decimal.Zero
		for i, token := range expired {
			tokenIDs[i] = token.TokenID
			total = total.Add(token.Amount)
		}

		if err := r.MarkTokensExpired(ctx, tokenIDs, now); err != nil {
			return fmt.Errorf("failed to expire tokens: %w", err)
		}
		if err := r.AdjustWalletBalance(ctx, userID, total.Neg(), now); err != nil {
			return fmt.Errorf("failed to reconcile wallet after sweep: %w", err)
		}

		writeOff := domain.Transaction{
			TransactionID: uuid.NewString(),
			ToUserID:      &userID,
			Amount:        total,
			TokenType:     sweepTokenType(expired),
			Kind:          domain.TxnExpire,
			Status:        domain.TxnCompleted,
			Description:   fmt.Sprintf("Write-off of %d expired tokens", len(expired)),
			CreatedAt:     now,
		}
		if err := r.SaveTransaction(ctx, writeOff); err != nil {
			return fmt.Errorf("failed to record expiry write-off: %w", err)
		}

		result.ExpiredCount = len(expired)
		result.TotalExpiredAmount = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// sweepTokenType labels the write-off record. Sweeps are per-type in
// practice; a mixed sweep falls back to the circulating unit.
func sweepTokenType(tokens []domain.Token) domain.TokenType {
	tokenType := tokens[0].Type
	for _, t := range tokens[1:] {
		if t.Type != tokenType {
			return domain.CirculatingUnit
		}
	}
	return tokenType
}
