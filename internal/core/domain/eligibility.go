package domain

import "github.com/shopspring/decimal"

// Trust rule parameters for negative-balance eligibility.
const (
	// EligibilityMinAccountAgeDays is the minimum account age.
	EligibilityMinAccountAgeDays = 30
	// EligibilityMinCompletedTxns is the minimum number of completed
	// transactions within the recent window.
	EligibilityMinCompletedTxns = 5
	// EligibilityRecentTxnWindow bounds how many recent transactions are
	// inspected when counting completed ones.
	EligibilityRecentTxnWindow = 10
)

// EligibleNegativeBalanceFloor is the floor granted to eligible accounts.
var EligibleNegativeBalanceFloor = decimal.NewFromInt(-100)

// Eligibility is the advisory outcome of the negative-balance trust check.
// The exchange path still requires a non-negative post-debit balance; callers
// that want to allow overdrafts enforce MaxNegativeBalance themselves.
type Eligibility struct {
	IsEligible                 bool            `json:"isEligible"`
	MaxNegativeBalance         decimal.Decimal `json:"maxNegativeBalance"`
	AccountAgeDays             int             `json:"accountAgeDays"`
	SuccessfulTransactionCount int             `json:"successfulTransactionCount"`
}
