package domain

import "time"

// Account is the identity slice of a platform user that the ledger reads.
// Accounts are owned by the external user module; the ledger core only needs
// the id and the creation instant (for account-age eligibility checks).
type Account struct {
	AccountID string    `json:"accountID"`
	CreatedAt time.Time `json:"createdAt"`
}

// AgeDays returns the whole number of days the account has existed at `now`.
func (a Account) AgeDays(now time.Time) int {
	if now.Before(a.CreatedAt) {
		return 0
	}
	return int(now.Sub(a.CreatedAt).Hours() / 24)
}
