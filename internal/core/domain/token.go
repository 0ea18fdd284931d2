package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TokenType enumerates the currency kinds a token can carry.
type TokenType string

const (
	CirculatingUnit TokenType = "CIRCULATING_UNIT"
)

// TokenStatus is the lifecycle state of a token.
// ACTIVE -> USED (full consumption by an exchange) and ACTIVE -> EXPIRED
// (sweep past the caducity date) are the only transitions; both are terminal.
type TokenStatus string

const (
	TokenActive  TokenStatus = "ACTIVE"
	TokenUsed    TokenStatus = "USED"
	TokenExpired TokenStatus = "EXPIRED"
)

// TokenSource tags the provenance of a token.
type TokenSource string

const (
	SourceConversion TokenSource = "CONVERSION"
	SourceIssuance   TokenSource = "ISSUANCE"
)

// Token is the unit of circulating value. Amount may be reduced in place
// while the token stays ACTIVE (partial consumption), never increased.
// Tokens without a caducity date never expire.
type Token struct {
	TokenID       string          `json:"tokenID"`
	UserID        string          `json:"userID"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TokenType       `json:"type"`
	Status        TokenStatus     `json:"status"`
	Source        TokenSource     `json:"source"`
	CaducityDate  *time.Time      `json:"caducityDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// DaysToExpiry returns ceil((caducityDate - now) / 1 day) and whether the
// token expires at all.
func (t Token) DaysToExpiry(now time.Time) (int, bool) {
	if t.CaducityDate == nil {
		return 0, false
	}
	days := t.CaducityDate.Sub(now).Hours() / 24
	return int(math.Ceil(days)), true
}

// IsExpired reports whether the caducity date has passed at `now`.
func (t Token) IsExpired(now time.Time) bool {
	return t.CaducityDate != nil && !t.CaducityDate.After(now)
}

// TokenConsumption describes one step of a FIFO walk over a sender's active
// tokens: how much is taken from the token and the amount it is left with.
// Exhausted tokens transition to USED; the rest stay ACTIVE at Remaining.
type TokenConsumption struct {
	TokenID   string
	Deduct    decimal.Decimal
	Remaining decimal.Decimal
	Exhausted bool
}
