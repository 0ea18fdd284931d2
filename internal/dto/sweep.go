package dto

import (
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// SweepParams defines query parameters for an expiry sweep.
type SweepParams struct {
	TokenType *domain.TokenType `form:"tokenType" binding:"omitempty,tokentype"`
}

// SweepResponse defines the data returned after an expiry sweep.
type SweepResponse struct {
	ExpiredCount       int             `json:"expiredCount"`
	TotalExpiredAmount decimal.Decimal `json:"totalExpiredAmount"`
}

// ToSweepResponse converts a domain.SweepResult to a SweepResponse DTO.
func ToSweepResponse(res *domain.SweepResult) SweepResponse {
	return SweepResponse{
		ExpiredCount:       res.ExpiredCount,
		TotalExpiredAmount: res.TotalExpiredAmount,
	}
}
