package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
	"github.com/kolectiva/lets_ledger/internal/dto"
)

// BalanceSvcFacade computes balance reports. Read-only.
type BalanceSvcFacade interface {
	GetBalance(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.BalanceReport, error)
}

// ExchangeSvcFacade executes value transfers between two accounts.
type ExchangeSvcFacade interface {
	Exchange(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string) (*domain.Transaction, error)
}

// ExpirySvcFacade deactivates tokens past their caducity date and reconciles
// the wallet.
type ExpirySvcFacade interface {
	Sweep(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.SweepResult, error)
}

// EligibilitySvcFacade evaluates the negative-balance trust rule. Advisory,
// never mutates stored state.
type EligibilitySvcFacade interface {
	CheckNegativeBalanceEligibility(ctx context.Context, userID string) (*domain.Eligibility, error)
}

// HistorySvcFacade projects the transaction log for one user.
type HistorySvcFacade interface {
	GetHistory(ctx context.Context, userID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error)
}
