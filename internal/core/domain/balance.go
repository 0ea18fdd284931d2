package domain

import "github.com/shopspring/decimal"

// NearExpiryWindowDays is the horizon for the `expiring` balance bucket:
// tokens with 0 < daysToExpiry <= window are reported as expiring.
const NearExpiryWindowDays = 30

// TypeBalance breaks down the active token total of one token type.
// Expired is diagnostic only: those tokens are still ACTIVE rows that a sweep
// has not deactivated yet.
type TypeBalance struct {
	Total    decimal.Decimal `json:"total"`
	Expiring decimal.Decimal `json:"expiring"`
	Expired  decimal.Decimal `json:"expired"`
}

// BalanceReport is the full balance view for one user: the wallet balances as
// stored, the per-type active token breakdown, and the sum of all active
// token amounts across types.
type BalanceReport struct {
	UserID      string                    `json:"userID"`
	WalletUnits decimal.Decimal           `json:"walletUnits"`
	WalletToins decimal.Decimal           `json:"walletToins"`
	PerType     map[TokenType]TypeBalance `json:"perType"`
	TotalActive decimal.Decimal           `json:"totalActive"`
}

// SweepResult summarises one expiry sweep.
type SweepResult struct {
	ExpiredCount       int             `json:"expiredCount"`
	TotalExpiredAmount decimal.Decimal `json:"totalExpiredAmount"`
}
