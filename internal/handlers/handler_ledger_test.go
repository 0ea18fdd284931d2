package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
	"github.com/kolectiva/lets_ledger/internal/core/services"
	"github.com/kolectiva/lets_ledger/internal/dto"
	"github.com/kolectiva/lets_ledger/internal/handlers"
	"github.com/kolectiva/lets_ledger/internal/middleware"
)

// --- Service mocks ---

type MockBalanceService struct{ mock.Mock }

func (m *MockBalanceService) GetBalance(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.BalanceReport, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceReport), args.Error(1)
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

type MockExchangeService struct{ mock.Mock }

func (m *MockExchangeService) Exchange(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, fromUserID, toUserID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.ExchangeSvcFacade = (*MockExchangeService)(nil)

type MockExpiryService struct{ mock.Mock }

func (m *MockExpiryService) Sweep(ctx context.Context, userID string, tokenType *domain.TokenType) (*domain.SweepResult, error) {
	args := m.Called(ctx, userID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepResult), args.Error(1)
}

var _ portssvc.ExpirySvcFacade = (*MockExpiryService)(nil)

type MockEligibilityService struct{ mock.Mock }

func (m *MockEligibilityService) CheckNegativeBalanceEligibility(ctx context.Context, userID string) (*domain.Eligibility, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Eligibility), args.Error(1)
}

var _ portssvc.EligibilitySvcFacade = (*MockEligibilityService)(nil)

type MockHistoryService struct{ mock.Mock }

func (m *MockHistoryService) GetHistory(ctx context.Context, userID string, params dto.ListHistoryParams) (*dto.ListHistoryResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListHistoryResponse), args.Error(1)
}

var _ portssvc.HistorySvcFacade = (*MockHistoryService)(nil)

// --- Test Suite ---

type LedgerHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockBalance     *MockBalanceService
	mockExchange    *MockExchangeService
	mockExpiry      *MockExpiryService
	mockEligibility *MockEligibilityService
	mockHistory     *MockHistoryService
	jwtSecret       string
}

func (suite *LedgerHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterCustomValidations())

	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockBalance = new(MockBalanceService)
	suite.mockExchange = new(MockExchangeService)
	suite.mockExpiry = new(MockExpiryService)
	suite.mockEligibility = new(MockEligibilityService)
	suite.mockHistory = new(MockHistoryService)

	svcs := &services.ServiceContainer{
		Balance:     suite.mockBalance,
		Exchange:    suite.mockExchange,
		Expiry:      suite.mockExpiry,
		Eligibility: suite.mockEligibility,
		History:     suite.mockHistory,
	}

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterLedgerRoutes(v1, svcs)
}

func (suite *LedgerHandlerTestSuite) do(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerHandlerTestSuite) TestGetBalance_Success() {
	userID := "alice"
	report := &domain.BalanceReport{
		UserID:      userID,
		WalletUnits: decimal.NewFromInt(85),
		WalletToins: decimal.NewFromInt(2),
		PerType: map[domain.TokenType]domain.TypeBalance{
			domain.CirculatingUnit: {
				Total:    decimal.NewFromInt(85),
				Expiring: decimal.NewFromInt(20),
				Expired:  decimal.Zero,
			},
		},
		TotalActive: decimal.NewFromInt(85),
	}
	suite.mockBalance.On("GetBalance", mock.Anything, userID, (*domain.TokenType)(nil)).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/balance", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(userID, resp.UserID)
	suite.True(resp.TotalActiveTokens.Equal(decimal.NewFromInt(85)))
	suite.Contains(resp.PerTypeBalance, string(domain.CirculatingUnit))
	suite.mockBalance.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetBalance_NoToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockBalance.AssertNotCalled(suite.T(), "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestGetBalance_InvalidTokenTypeParam() {
	w := suite.do(http.MethodGet, "/api/v1/ledger/balance?tokenType=BOGUS", "alice", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBalance.AssertNotCalled(suite.T(), "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestExchange_Success() {
	from, to := "alice", "bob"
	amount := decimal.NewFromInt(25)
	txn := &domain.Transaction{
		TransactionID: "txn-1",
		FromUserID:    &from,
		ToUserID:      &to,
		Amount:        amount,
		TokenType:     domain.CirculatingUnit,
		Kind:          domain.TxnExchange,
		Status:        domain.TxnCompleted,
		Description:   "groceries",
		CreatedAt:     time.Now().UTC(),
	}
	suite.mockExchange.On("Exchange", mock.Anything, from, to, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(amount)
	}), "groceries").Return(txn, nil).Once()

	body := dto.ExchangeRequest{ToUserID: to, Amount: amount, Description: "groceries"}
	w := suite.do(http.MethodPost, "/api/v1/ledger/exchanges", from, body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("txn-1", resp.TransactionID)
	suite.Equal(string(domain.TxnExchange), resp.Type)
	suite.mockExchange.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestExchange_InsufficientBalance() {
	suite.mockExchange.On("Exchange", mock.Anything, "alice", "bob", mock.Anything, "").
		Return(nil, fmt.Errorf("%w: have 10, need 100", apperrors.ErrInsufficientBalance)).Once()

	body := dto.ExchangeRequest{ToUserID: "bob", Amount: decimal.NewFromInt(100)}
	w := suite.do(http.MethodPost, "/api/v1/ledger/exchanges", "alice", body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestExchange_ConflictAfterRetries() {
	suite.mockExchange.On("Exchange", mock.Anything, "alice", "bob", mock.Anything, "").
		Return(nil, apperrors.NewAppError(409, "commit conflict", apperrors.ErrConflict)).Once()

	body := dto.ExchangeRequest{ToUserID: "bob", Amount: decimal.NewFromInt(10)}
	w := suite.do(http.MethodPost, "/api/v1/ledger/exchanges", "alice", body)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestExchange_MissingBody() {
	w := suite.do(http.MethodPost, "/api/v1/ledger/exchanges", "alice", map[string]any{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockExchange.AssertNotCalled(suite.T(), "Exchange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestSweep_Success() {
	result := &domain.SweepResult{ExpiredCount: 3, TotalExpiredAmount: decimal.NewFromInt(45)}
	suite.mockExpiry.On("Sweep", mock.Anything, "alice", (*domain.TokenType)(nil)).Return(result, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/ledger/sweeps", "alice", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SweepResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(3, resp.ExpiredCount)
	suite.True(resp.TotalExpiredAmount.Equal(decimal.NewFromInt(45)))
}

func (suite *LedgerHandlerTestSuite) TestGetEligibility_Success() {
	eligibility := &domain.Eligibility{
		IsEligible:                 true,
		MaxNegativeBalance:         domain.EligibleNegativeBalanceFloor,
		AccountAgeDays:             45,
		SuccessfulTransactionCount: 7,
	}
	suite.mockEligibility.On("CheckNegativeBalanceEligibility", mock.Anything, "alice").Return(eligibility, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/eligibility", "alice", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.EligibilityResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.IsEligible)
	suite.Equal(45, resp.AccountAgeDays)
}

func (suite *LedgerHandlerTestSuite) TestGetEligibility_AccountNotFound() {
	suite.mockEligibility.On("CheckNegativeBalanceEligibility", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("%w: account ghost", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/eligibility", "ghost", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestListHistory_Success() {
	next := "cursor"
	response := &dto.ListHistoryResponse{
		Transactions: []dto.HistoryEntryResponse{
			{
				TransactionResponse: dto.TransactionResponse{
					TransactionID: "txn-1",
					Amount:        decimal.NewFromInt(10),
					TokenType:     string(domain.CirculatingUnit),
					Type:          string(domain.TxnExchange),
					Status:        string(domain.TxnCompleted),
				},
				Direction: string(domain.DirectionOutgoing),
			},
		},
		NextToken: &next,
	}
	suite.mockHistory.On("GetHistory", mock.Anything, "alice", mock.MatchedBy(func(p dto.ListHistoryParams) bool {
		return p.Limit == 20 && p.NextToken == nil
	})).Return(response, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/transactions?limit=20", "alice", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListHistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Transactions, 1)
	suite.Equal(string(domain.DirectionOutgoing), resp.Transactions[0].Direction)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
