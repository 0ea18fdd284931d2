package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade
// interface.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

// MockLedgerRepository is a mock type for the LedgerRepositoryWithTx
// interface. WithTransaction runs fn against the mock itself unless an error
// was configured, so transactional flows exercise the same expectations.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerRepository) GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerRepository) AdjustWalletBalance(ctx context.Context, userID string, delta decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, userID, delta, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetActiveTokens(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Token), args.Error(1)
}

func (m *MockLedgerRepository) GetActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType) ([]domain.Token, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Token), args.Error(1)
}

func (m *MockLedgerRepository) GetExpiredActiveTokensForUpdate(ctx context.Context, userID string, tokenType *domain.TokenType, asOf time.Time) ([]domain.Token, error) {
	args := m.Called(ctx, userID, tokenType, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Token), args.Error(1)
}

func (m *MockLedgerRepository) SaveToken(ctx context.Context, token domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockLedgerRepository) ApplyTokenConsumptions(ctx context.Context, consumptions []domain.TokenConsumption, now time.Time) error {
	args := m.Called(ctx, consumptions, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkTokensExpired(ctx context.Context, tokenIDs []string, now time.Time) error {
	args := m.Called(ctx, tokenIDs, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockLedgerRepository) CountRecentCompletedTransactions(ctx context.Context, userID string, window int) (int, error) {
	args := m.Called(ctx, userID, window)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) WithTransaction(ctx context.Context, fn func(portsrepo.LedgerRepositoryFacade) error) error {
	args := m.Called(ctx, mock.Anything)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

var _ portsrepo.LedgerRepositoryWithTx = (*MockLedgerRepository)(nil)

// MockBalanceService is a mock type for the BalanceSvcFacade interface.
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalance(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.BalanceReport, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceReport), args.Error(1)
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

// MockExpiryService is a mock type for the ExpirySvcFacade interface.
type MockExpiryService struct {
	mock.Mock
}

func (m *MockExpiryService) Sweep(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.SweepResult, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepResult), args.Error(1)
}

var _ portssvc.ExpirySvcFacade = (*MockExpiryService)(nil)
