package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Database-facing mirrors of the core domain types. Field names track column
// names; conversion to/from domain happens in utils/mapping.

type Account struct {
	AccountID string
	CreatedAt time.Time
}

type Wallet struct {
	WalletID      string
	UserID        string
	BalanceUnits  decimal.Decimal
	BalanceToins  decimal.Decimal
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

type Token struct {
	TokenID       string
	UserID        string
	Amount        decimal.Decimal
	TokenType     string
	Status        string
	Source        string
	CaducityDate  *time.Time
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

type Transaction struct {
	TransactionID   string
	FromUserID      *string
	ToUserID        *string
	Amount          decimal.Decimal
	TokenType       string
	TransactionType string
	Status          string
	Description     string
	CreatedAt       time.Time
}
