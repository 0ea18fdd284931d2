package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the cached aggregate balance view for a user, one-to-one with an
// account. BalanceUnits must equal the sum of the user's ACTIVE
// CIRCULATING_UNIT token amounts after every committed ledger operation.
// BalanceToins belongs to the external conversion module; the ledger core
// never writes it.
type Wallet struct {
	WalletID      string          `json:"walletID"`
	UserID        string          `json:"userID"`
	BalanceUnits  decimal.Decimal `json:"balanceUnits"`
	BalanceToins  decimal.Decimal `json:"balanceToins"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}
