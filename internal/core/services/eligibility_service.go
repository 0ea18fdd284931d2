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

// eligibilityService evaluates whether an account may carry a negative
// balance. Pure decision logic over the account age and recent transaction
// record; the result is advisory. The exchange path still requires a
// non-negative post-debit balance.
type eligibilityService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
	now         nowFunc
}

// NewEligibilityService creates a new eligibility service.
func NewEligibilityService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx) portssvc.EligibilitySvcFacade {
	return &eligibilityService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		now:         defaultNow,
	}
}

var _ portssvc.EligibilitySvcFacade = (*eligibilityService)(nil)

// CheckNegativeBalanceEligibility applies the trust rule: the account must be
// at least 30 days old and have at least 5 COMPLETED transactions among its
// 10 most recent.
func (s *eligibilityService) CheckNegativeBalanceEligibility(ctx context.Context, userID string) (*domain.Eligibility, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", userID, err)
	}

	completed, err := s.ledgerRepo.CountRecentCompletedTransactions(ctx, userID, domain.EligibilityRecentTxnWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed transactions for %s: %w", userID, err)
	}

	ageDays := account.AgeDays(s.now())
	eligible := ageDays >= domain.EligibilityMinAccountAgeDays && completed >= domain.EligibilityMinCompletedTxns

	floor := decimal.Zero
	if eligible {
		floor = domain.EligibleNegativeBalanceFloor
	}

	logger.Debug("Eligibility evaluated", slog.String("user_id", userID), slog.Bool("eligible", eligible), slog.Int("age_days", ageDays), slog.Int("completed_txns", completed))
	return &domain.Eligibility{
		IsEligible:                 eligible,
		MaxNegativeBalance:         floor,
		AccountAgeDays:             ageDays,
		SuccessfulTransactionCount: completed,
	}, nil
}
