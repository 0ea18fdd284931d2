package dto

import (
	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// ListHistoryParams defines query parameters for listing a user's
// transaction history.
type ListHistoryParams struct {
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// HistoryEntryResponse is a transaction oriented relative to the requesting
// user.
type HistoryEntryResponse struct {
	TransactionResponse
	Direction string `json:"direction"`
}

// ListHistoryResponse defines the paginated history payload.
type ListHistoryResponse struct {
	Transactions []HistoryEntryResponse `json:"transactions"`
	NextToken    *string                `json:"nextToken,omitempty"`
}

// ToHistoryEntryResponse converts a domain.HistoryEntry to a DTO.
func ToHistoryEntryResponse(entry domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		TransactionResponse: ToTransactionResponse(&entry.Transaction),
		Direction:           string(entry.Direction),
	}
}

// ToHistoryEntryResponses converts a slice of domain.HistoryEntry to DTOs.
func ToHistoryEntryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	res := make([]HistoryEntryResponse, len(entries))
	for i, entry := range entries {
		res[i] = ToHistoryEntryResponse(entry)
	}
	return res
}
