package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies what a transaction records.
type TransactionKind string

const (
	// TxnExchange is a value transfer between two accounts.
	TxnExchange TransactionKind = "EXCHANGE"
	// TxnConvert records a currency conversion (written by the external
	// conversion module, read here for history).
	TxnConvert TransactionKind = "CONVERT"
	// TxnReceive records an external issuance credited to an account.
	TxnReceive TransactionKind = "RECEIVE"
	// TxnExpire records the write-off of swept tokens.
	TxnExpire TransactionKind = "EXPIRE"
)

// TransactionStatus is the settlement state of a transaction record.
type TransactionStatus string

const (
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
	TxnPending   TransactionStatus = "PENDING"
)

// TransactionDirection orients a transaction relative to a given user.
type TransactionDirection string

const (
	DirectionIncoming TransactionDirection = "INCOMING"
	DirectionOutgoing TransactionDirection = "OUTGOING"
)

// Transaction is an append-only audit record shared by both parties of an
// exchange. Amount is always positive; direction is implied by which user
// fields are set. Once Status is COMPLETED the record is never mutated.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	FromUserID    *string           `json:"fromUserID,omitempty"` // nil for pure issuance/expiry
	ToUserID      *string           `json:"toUserID,omitempty"`   // nil for pure debit
	Amount        decimal.Decimal   `json:"amount"`
	TokenType     TokenType         `json:"tokenType"`
	Kind          TransactionKind   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// DirectionFor orients the transaction relative to userID: OUTGOING when the
// user is the sender, INCOMING otherwise.
func (t Transaction) DirectionFor(userID string) TransactionDirection {
	if t.FromUserID != nil && *t.FromUserID == userID {
		return DirectionOutgoing
	}
	return DirectionIncoming
}

// HistoryEntry is a transaction projected for one user's history view.
type HistoryEntry struct {
	Transaction
	Direction TransactionDirection `json:"direction"`
}
