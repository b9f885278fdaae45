package txgateway

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// workerRequest is the one request a Worker is spawned with. Receiver is
// empty for deposit/withdraw.
type workerRequest struct {
	Type     TxType
	Sender   string
	Receiver string
	Amount   int64
	Currency string
	TxID     uuid.UUID
}

// runWorker executes one transaction to completion and publishes exactly
// one outcome on bus, tagged with handle so the Gateway can find the
// waiter. It never blocks on anything but the in-memory stores.
func runWorker(handle snowflake.ID, req workerRequest, users UserStore, txlog TransactionLog, bus completionBus, log *zerolog.Logger) {
	switch req.Type {
	case TxDeposit:
		runDeposit(handle, req, users, txlog, bus, log)
	case TxWithdraw:
		runWithdraw(handle, req, users, txlog, bus, log)
	case TxSend:
		runSend(handle, req, users, txlog, bus, log)
	}
}

func runDeposit(handle snowflake.ID, req workerRequest, users UserStore, txlog TransactionLog, bus completionBus, log *zerolog.Logger) {
	sender, err := users.Get(req.Sender)
	if err != nil {
		bus <- failure(handle, ErrUnexpected, req.Sender)
		return
	}

	tx := &Transaction{ID: req.TxID, Type: TxDeposit, Status: TxInProgress, Worker: handle}
	if err := txlog.Create(tx); err != nil {
		bus <- failure(handle, ErrUnexpected, req.Sender)
		return
	}

	newBal, err := applyOperation(tx, users, txlog, sender.ID, sender.balance(req.Currency), Credit, req.Currency, req.Amount)
	if err != nil {
		revertOperations(tx, users, txlog, err, log)
		bus <- failure(handle, ErrUnexpected, req.Sender)
		return
	}

	finishTx(tx, txlog)
	bus <- outcome{
		Kind:   outcomeFinished,
		Worker: handle,
		Type:   TxDeposit,
		Sender: userBalance{Username: req.Sender, Balance: newBal},
	}
}

func runWithdraw(handle snowflake.ID, req workerRequest, users UserStore, txlog TransactionLog, bus completionBus, log *zerolog.Logger) {
	sender, err := users.Get(req.Sender)
	if err != nil {
		bus <- failure(handle, ErrUnexpected, req.Sender)
		return
	}
	if sender.balance(req.Currency) < req.Amount {
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrNotEnoughFunds, Users: []string{req.Sender}}
		return
	}

	tx := &Transaction{ID: req.TxID, Type: TxWithdraw, Status: TxInProgress, Worker: handle}
	if err := txlog.Create(tx); err != nil {
		bus <- failure(handle, ErrUnexpected, req.Sender)
		return
	}

	newBal, err := applyOperation(tx, users, txlog, sender.ID, sender.balance(req.Currency), Debit, req.Currency, req.Amount)
	if err != nil {
		revertOperations(tx, users, txlog, err, log)
		bus <- failure(handle, ErrUnexpected, req.Sender)
		return
	}

	finishTx(tx, txlog)
	bus <- outcome{
		Kind:   outcomeFinished,
		Worker: handle,
		Type:   TxWithdraw,
		Sender: userBalance{Username: req.Sender, Balance: newBal},
	}
}

func runSend(handle snowflake.ID, req workerRequest, users UserStore, txlog TransactionLog, bus completionBus, log *zerolog.Logger) {
	sender, err := users.Get(req.Sender)
	if err != nil {
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrUserDoesNotExist, Users: []string{req.Sender, req.Receiver}}
		return
	}
	receiver, err := users.Get(req.Receiver)
	if err != nil {
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrUserDoesNotExist, Users: []string{req.Sender, req.Receiver}}
		return
	}
	if sender.balance(req.Currency) < req.Amount {
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrNotEnoughFunds, Users: []string{req.Sender, req.Receiver}}
		return
	}

	tx := &Transaction{ID: req.TxID, Type: TxSend, Status: TxInProgress, Worker: handle}
	if err := txlog.Create(tx); err != nil {
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrUnexpected, Users: []string{req.Sender, req.Receiver}}
		return
	}

	fromBal, err := applyOperation(tx, users, txlog, sender.ID, sender.balance(req.Currency), Debit, req.Currency, req.Amount)
	if err != nil {
		revertOperations(tx, users, txlog, err, log)
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrUnexpected, Users: []string{req.Sender, req.Receiver}}
		return
	}

	toBal, err := applyOperation(tx, users, txlog, receiver.ID, receiver.balance(req.Currency), Credit, req.Currency, req.Amount)
	if err != nil {
		revertOperations(tx, users, txlog, err, log)
		bus <- outcome{Kind: outcomeFailed, Worker: handle, Reason: ErrUnexpected, Users: []string{req.Sender, req.Receiver}}
		return
	}

	finishTx(tx, txlog)
	bus <- outcome{
		Kind:     outcomeFinished,
		Worker:   handle,
		Type:     TxSend,
		Sender:   userBalance{Username: req.Sender, Balance: fromBal},
		Receiver: &userBalance{Username: req.Receiver, Balance: toBal},
	}
}

// applyOperation mutates a single user's balance by the signed amount for
// direction, persists it, and appends a finished Operation to tx. Returns
// the user's error if the store update fails (modeled, not reachable in
// this single-process implementation since no user ever vanishes).
func applyOperation(tx *Transaction, users UserStore, txlog TransactionLog, username string, current int64, dir Direction, currency string, amount int64) (int64, error) {
	signed := amount
	if dir == Debit {
		signed = -amount
	}
	newBal := current + signed

	u, err := users.Get(username)
	if err != nil {
		return 0, err
	}
	balances := cloneBalances(u.Balances)
	balances[currency] = newBal
	if err := users.Update(username, balances); err != nil {
		return 0, err
	}

	op := Operation{
		Direction:   dir,
		Username:    username,
		Currency:    currency,
		Amount:      amount,
		PostBalance: newBal,
		Status:      OpFinished,
	}
	tx.Operations = append(tx.Operations, op)
	ops := append([]Operation(nil), tx.Operations...)
	_ = txlog.Update(tx.ID, TxPatch{Operations: ops})
	return newBal, nil
}

// revertOperations walks tx's already-finished operations in reverse and
// undoes each one on the live user balances, marking it reverted, then
// sets tx.Status to failed_reverted. If undoing an operation itself fails,
// the surviving discrepancy is left in place and logged — no retry.
func revertOperations(tx *Transaction, users UserStore, txlog TransactionLog, cause error, log *zerolog.Logger) {
	for i := len(tx.Operations) - 1; i >= 0; i-- {
		op := &tx.Operations[i]
		if op.Status != OpFinished {
			continue
		}
		inverse := op.Amount
		if op.Direction == Credit {
			inverse = -op.Amount
		}
		u, err := users.Get(op.Username)
		if err != nil {
			if log != nil {
				log.Error().Str("tx", tx.ID.String()).Str("user", op.Username).Err(err).Msg("revert read failed")
			}
			continue
		}
		balances := cloneBalances(u.Balances)
		balances[op.Currency] = u.balance(op.Currency) + inverse
		if err := users.Update(op.Username, balances); err != nil {
			if log != nil {
				log.Error().Str("tx", tx.ID.String()).Str("user", op.Username).Err(err).Msg("revert write failed")
			}
			continue
		}
		op.Status = OpReverted
	}
	status := TxFailedReverted
	reason := cause.Error()
	_ = txlog.Update(tx.ID, TxPatch{Status: &status, FailReason: &reason, Operations: tx.Operations})
	if log != nil {
		log.Error().Str("tx", tx.ID.String()).Err(cause).Msg("transaction reverted")
	}
}

func finishTx(tx *Transaction, txlog TransactionLog) {
	status := TxFinished
	_ = txlog.Update(tx.ID, TxPatch{Status: &status, Operations: tx.Operations})
}

func failure(handle snowflake.ID, reason ErrKind, users ...string) outcome {
	return outcome{Kind: outcomeFailed, Worker: handle, Reason: reason, Users: users}
}
