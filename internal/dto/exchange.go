package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// ExchangeRequest defines the data needed to execute a value transfer. The
// sender is the authenticated caller.
type ExchangeRequest struct {
	ToUserID    string          `json:"toUserID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// TransactionResponse defines the data returned for a transaction record.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	FromUserID    *string         `json:"fromUserID,omitempty"`
	ToUserID      *string         `json:"toUserID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	TokenType     string          `json:"tokenType"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to a DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		FromUserID:    txn.FromUserID,
		ToUserID:      txn.ToUserID,
		Amount:        txn.Amount,
		TokenType:     string(txn.TokenType),
		Type:          string(txn.Kind),
		Status:        string(txn.Status),
		Description:   txn.Description,
		CreatedAt:     txn.CreatedAt,
	}
}
