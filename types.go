package txgateway

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Direction identifies which leg of an Operation a balance mutation
// represents.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// OpStatus is the lifecycle state of a single Operation.
type OpStatus string

const (
	OpFinished OpStatus = "finished"
	OpReverted OpStatus = "reverted"
)

// TxType enumerates the kinds of transactions a Worker can execute.
type TxType string

const (
	TxDeposit  TxType = "deposit"
	TxWithdraw TxType = "withdraw"
	TxSend     TxType = "send"
)

// TxStatus is the lifecycle state of a Transaction.
type TxStatus string

const (
	TxInProgress     TxStatus = "in_progress"
	TxFinished       TxStatus = "finished"
	TxFailed         TxStatus = "failed"
	TxFailedReverted TxStatus = "failed_reverted"
)

// Operation is one balance mutation leg. A send has two: a debit on the
// sender and a credit on the receiver. Deposit and withdraw have one.
type Operation struct {
	Direction   Direction
	Username    string
	Currency    string
	Amount      int64
	PostBalance int64
	Status      OpStatus
}

// Transaction is the atomic unit of work behind a single client request.
type Transaction struct {
	ID         uuid.UUID
	Type       TxType
	Operations []Operation
	Status     TxStatus
	FailReason string
	Worker     snowflake.ID
}

// User holds a username and its per-currency balances, all in integer
// minor units. A missing currency key reads as zero.
type User struct {
	ID       string
	Balances map[string]int64
}

// balance returns the stored balance for a currency, or zero if absent.
func (u *User) balance(currency string) int64 {
	if u.Balances == nil {
		return 0
	}
	return u.Balances[currency]
}

// cloneBalances returns a shallow copy of the balances map, used so callers
// can build a new balances snapshot without mutating the one in flight.
func cloneBalances(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
