package dto

import (
	"github.com/shopspring/decimal"

	"github.com/kolectiva/lets_ledger/internal/core/domain"
)

// GetBalanceParams defines query parameters for a balance read.
type GetBalanceParams struct {
	TokenType *domain.TokenType `form:"tokenType" binding:"omitempty,tokentype"`
}

// TypeBalanceResponse mirrors domain.TypeBalance.
type TypeBalanceResponse struct {
	Total    decimal.Decimal `json:"total"`
	Expiring decimal.Decimal `json:"expiring"`
	Expired  decimal.Decimal `json:"expired"`
}

// WalletBalanceResponse holds the stored wallet balances.
type WalletBalanceResponse struct {
	Units decimal.Decimal `json:"units"`
	Toins decimal.Decimal `json:"toins"`
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	UserID            string                         `json:"userID"`
	WalletBalance     WalletBalanceResponse          `json:"walletBalance"`
	PerTypeBalance    map[string]TypeBalanceResponse `json:"perTypeBalance"`
	TotalActiveTokens decimal.Decimal                `json:"totalActiveTokens"`
}

// ToBalanceResponse converts a domain.BalanceReport to a BalanceResponse DTO.
func ToBalanceResponse(report *domain.BalanceReport) BalanceResponse {
	perType := make(map[string]TypeBalanceResponse, len(report.PerType))
	for tokenType, tb := range report.PerType {
		perType[string(tokenType)] = TypeBalanceResponse{
			Total:    tb.Total,
			Expiring: tb.Expiring,
			Expired:  tb.Expired,
		}
	}
	return BalanceResponse{
		UserID: report.UserID,
		WalletBalance: WalletBalanceResponse{
			Units: report.WalletUnits,
			Toins: report.WalletToins,
		},
		PerTypeBalance:    perType,
		TotalActiveTokens: report.TotalActive,
	}
}
