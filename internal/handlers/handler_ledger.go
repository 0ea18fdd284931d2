package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kolectiva/lets_ledger/internal/apperrors"
	"github.com/kolectiva/lets_ledger/internal/core/services"
	"github.com/kolectiva/lets_ledger/internal/dto"
	"github.com/kolectiva/lets_ledger/internal/middleware"
)

// LedgerHandler exposes the ledger operations over HTTP. The acting user is
// always the authenticated caller; no endpoint accepts a user id parameter.
type LedgerHandler struct {
	svcs *services.ServiceContainer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svcs *services.ServiceContainer) *LedgerHandler {
	return &LedgerHandler{svcs: svcs}
}

// respondWithLedgerError maps service errors onto HTTP statuses.
func respondWithLedgerError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrWalletNotProvisioned):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The operation conflicted with a concurrent update. Please retry."})
	default:
		logger.Error("Unhandled ledger error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// GetBalance godoc
// @Summary Get the caller's balance report
// @Description Returns wallet balances, a per-type token breakdown with near-expiry and expired buckets, and the total of active tokens.
// @Tags ledger
// @Produce json
// @Param tokenType query string false "Filter by token type" Enums(CIRCULATING_UNIT)
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /ledger/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var params dto.GetBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.svcs.Balance.GetBalance(c.Request.Context(), userID, params.TokenType)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(report))
}

// Exchange godoc
// @Summary Transfer value to another account
// @Description Consumes the caller's tokens soonest-expiry-first, credits the receiver with one fresh token and records the transaction.
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body dto.ExchangeRequest true "Exchange details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /ledger/exchanges [post]
func (h *LedgerHandler) Exchange(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	txn, err := h.svcs.Exchange.Exchange(c.Request.Context(), userID, req.ToUserID, req.Amount, req.Description)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// Sweep godoc
// @Summary Write off the caller's expired tokens
// @Description Deactivates ACTIVE tokens past their caducity date, reconciles the wallet and records a write-off transaction. Idempotent.
// @Tags ledger
// @Produce json
// @Param tokenType query string false "Filter by token type" Enums(CIRCULATING_UNIT)
// @Success 200 {object} dto.SweepResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /ledger/sweeps [post]
func (h *LedgerHandler) Sweep(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var params dto.SweepParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	result, err := h.svcs.Expiry.Sweep(c.Request.Context(), userID, params.TokenType)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSweepResponse(result))
}

// GetEligibility godoc
// @Summary Check the caller's negative-balance eligibility
// @Description Evaluates the account-age and activity trust rules. Advisory only; no stored state changes.
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.EligibilityResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /ledger/eligibility [get]
func (h *LedgerHandler) GetEligibility(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	eligibility, err := h.svcs.Eligibility.CheckNegativeBalanceEligibility(c.Request.Context(), userID)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEligibilityResponse(eligibility))
}

// ListHistory godoc
// @Summary List the caller's transaction history
// @Description Returns the caller's transactions newest first, each oriented as INCOMING or OUTGOING, with token-based pagination.
// @Tags ledger
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /ledger/transactions [get]
func (h *LedgerHandler) ListHistory(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var params dto.ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	history, err := h.svcs.History.GetHistory(c.Request.Context(), userID, params)
	if err != nil {
		respondWithLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
