package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
	"github.com/kolectiva/lets_ledger/internal/core/services"
)

type ExpiryServiceTestSuite struct {
	suite.Suite
	mockAccounts *MockAccountRepository
	mockLedger   *MockLedgerRepository
	service      portssvc.ExpirySvcFacade
}

func (suite *ExpiryServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockLedger = new(MockLedgerRepository)
	suite.service = services.NewExpiryService(suite.mockLedger, suite.mockAccounts)
}

func (suite *ExpiryServiceTestSuite) TestSweep_AccountNotFound() {
	ctx := context.Background()
	suite.mockAccounts.On("FindAccountByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.Sweep(ctx, "ghost", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(result)
	suite.mockLedger.AssertNotCalled(suite.T(), "WithTransaction", mock.Anything, mock.Anything)
}

func (suite *ExpiryServiceTestSuite) TestSweep_NothingExpiredIsNoOp() {
	ctx := context.Background()
	account := &domain.Account{AccountID: "alice", CreatedAt: time.Now()}
	wallet := &domain.Wallet{UserID: "alice"}

	suite.mockAccounts.On("FindAccountByID", ctx, "alice").Return(account, nil).Once()
	suite.mockLedger.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedger.On("GetWalletForUpdate", mock.Anything, "alice").Return(wallet, nil).Once()
	suite.mockLedger.On("GetExpiredActiveTokensForUpdate", mock.Anything, "alice", (*domain.TokenType)(nil), mock.Anything).Return([]domain.Token{}, nil).Once()

	result, err := suite.service.Sweep(ctx, "alice", nil)

	suite.Require().NoError(err)
	suite.Equal(0, result.ExpiredCount)
	suite.True(result.TotalExpiredAmount.IsZero())
	suite.mockLedger.AssertNotCalled(suite.T(), "MarkTokensExpired", mock.Anything, mock.Anything, mock.Anything)
	suite.mockLedger.AssertNotCalled(suite.T(), "AdjustWalletBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockLedger.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *ExpiryServiceTestSuite) TestSweep_WritesOffExpiredTokens() {
	ctx := context.Background()
	account := &domain.Account{AccountID: "alice", CreatedAt: time.Now()}
	wallet := &domain.Wallet{UserID: "alice"}

	past := time.Now().Add(-24 * time.Hour)
	expired := []domain.Token{
		{TokenID: "t-1", UserID: "alice", Amount: decimal.NewFromInt(10), Type: domain.CirculatingUnit, Status: domain.TokenActive, CaducityDate: &past},
		{TokenID: "t-2", UserID: "alice", Amount: decimal.NewFromInt(20), Type: domain.CirculatingUnit, Status: domain.TokenActive, CaducityDate: &past},
	}

	suite.mockAccounts.On("FindAccountByID", ctx, "alice").Return(account, nil).Once()
	suite.mockLedger.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedger.On("GetWalletForUpdate", mock.Anything, "alice").Return(wallet, nil).Once()
	suite.mockLedger.On("GetExpiredActiveTokensForUpdate", mock.Anything, "alice", (*domain.TokenType)(nil), mock.Anything).Return(expired, nil).Once()
	suite.mockLedger.On("MarkTokensExpired", mock.Anything, []string{"t-1", "t-2"}, mock.Anything).Return(nil).Once()
	suite.mockLedger.On("AdjustWalletBalance", mock.Anything, "alice", decimal.NewFromInt(-30), mock.Anything).Return(nil).Once()
	suite.mockLedger.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Kind == domain.TxnExpire && txn.Status == domain.TxnCompleted &&
			txn.FromUserID == nil &&
			txn.ToUserID != nil && *txn.ToUserID == "alice" &&
			txn.Amount.Equal(decimal.NewFromInt(30))
	})).Return(nil).Once()

	result, err := suite.service.Sweep(ctx, "alice", nil)

	suite.Require().NoError(err)
	suite.Equal(2, result.ExpiredCount)
	suite.True(result.TotalExpiredAmount.Equal(decimal.NewFromInt(30)))
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *ExpiryServiceTestSuite) TestSweep_ConflictRetriesThenSucceeds() {
	ctx := context.Background()
	account := &domain.Account{AccountID: "alice", CreatedAt: time.Now()}
	wallet := &domain.Wallet{UserID: "alice"}

	conflict := apperrors.NewAppError(409, "commit conflict", apperrors.ErrConflict)
	suite.mockAccounts.On("FindAccountByID", ctx, "alice").Return(account, nil).Once()
	suite.mockLedger.On("WithTransaction", mock.Anything, mock.Anything).Return(conflict).Once()
	suite.mockLedger.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedger.On("GetWalletForUpdate", mock.Anything, "alice").Return(wallet, nil).Once()
	suite.mockLedger.On("GetExpiredActiveTokensForUpdate", mock.Anything, "alice", (*domain.TokenType)(nil), mock.Anything).Return([]domain.Token{}, nil).Once()

	result, err := suite.service.Sweep(ctx, "alice", nil)

	suite.Require().NoError(err)
	suite.Equal(0, result.ExpiredCount)
	suite.mockLedger.AssertExpectations(suite.T())
}

func TestExpiryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpiryServiceTestSuite))
}
