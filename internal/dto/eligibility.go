package dto

import (
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// EligibilityResponse defines the data returned for a negative-balance
// eligibility check.
type EligibilityResponse struct {
	IsEligible                 bool            `json:"isEligible"`
	MaxNegativeBalance         decimal.Decimal `json:"maxNegativeBalance"`
	AccountAgeDays             int             `json:"accountAgeDays"`
	SuccessfulTransactionCount int             `json:"successfulTransactionCount"`
}

// ToEligibilityResponse converts a domain.Eligibility to a DTO.
func ToEligibilityResponse(e *domain.Eligibility) EligibilityResponse {
	return EligibilityResponse{
		IsEligible:                 e.IsEligible,
		MaxNegativeBalance:         e.MaxNegativeBalance,
		AccountAgeDays:             e.AccountAgeDays,
		SuccessfulTransactionCount: e.SuccessfulTransactionCount,
	}
}
