package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
	"github.com/kolectiva/lets_ledger/internal/dto"
	"github.com/kolectiva/lets_ledger/internal/middleware"
)

const defaultHistoryLimit = 50

// historyService is the read-only projection of past transactions for a user.
type historyService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
}

// NewHistoryService creates a new history service.
func NewHistoryService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryWithTx) portssvc.HistorySvcFacade {
	return &historyService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.HistorySvcFacade = (*historyService)(nil)

// GetHistory lists the user's transactions newest first, each oriented with a
// direction relative to the user, with cursor pagination.
func (s *historyService) GetHistory(ctx context.Context, userID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", userID, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	transactions, nextToken, err := s.ledgerRepo.ListTransactionsByUser(ctx, userID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	entries := make([]domain.HistoryEntry, len(transactions))
	for i, txn := range transactions {
		entries[i] = domain.HistoryEntry{
			Transaction: txn,
			Direction:   txn.DirectionFor(userID),
		}
	}

	logger.Info("History listed", slog.String("user_id", userID), slog.Int("count", len(entries)))
	return &dto.ListHistoryResponse{
		Transactions: dto.ToHistoryEntryResponses(entries),
		NextToken:    nextToken,
	}, nil
}
