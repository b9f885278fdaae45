package txgateway

import (
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDepositSuccess(t *testing.T) {
	users := NewUserStore()
	txlog := NewTransactionLog()
	require.NoError(t, users.Create("alice"))
	bus := newCompletionBus(1)
	log := zerolog.Nop()

	req := workerRequest{Type: TxDeposit, Sender: "alice", Amount: 500, Currency: "USD", TxID: uuid.New()}
	runWorker(snowflake.ID(1), req, users, txlog, bus, &log)

	out := <-bus
	require.Equal(t, outcomeFinished, out.Kind)
	assert.Equal(t, int64(500), out.Sender.Balance)

	tx, err := txlog.Get(req.TxID)
	require.NoError(t, err)
	assert.Equal(t, TxFinished, tx.Status)
}

func TestRunWithdrawInsufficientFunds(t *testing.T) {
	users := NewUserStore()
	txlog := NewTransactionLog()
	require.NoError(t, users.Create("alice"))
	bus := newCompletionBus(1)
	log := zerolog.Nop()

	req := workerRequest{Type: TxWithdraw, Sender: "alice", Amount: 500, Currency: "USD", TxID: uuid.New()}
	runWorker(snowflake.ID(2), req, users, txlog, bus, &log)

	out := <-bus
	require.Equal(t, outcomeFailed, out.Kind)
	assert.Equal(t, ErrNotEnoughFunds, out.Reason)

	_, err := txlog.Get(req.TxID)
	assert.Error(t, err, "no transaction should be created for a rejected withdrawal")
}

// failOnUpdateStore is a UserStore that behaves like the real in-memory one
// except Update fails for a single chosen username, used to force the
// receiver-credit step of a send to fail after the sender's debit has
// already landed.
type failOnUpdateStore struct {
	*memUserStore
	failFor string
}

func (s *failOnUpdateStore) Update(id string, balances map[string]int64) error {
	if id == s.failFor {
		return errors.New("store unavailable")
	}
	return s.memUserStore.Update(id, balances)
}

// TestRunSendRevertsSenderDebitOnReceiverFailure drives runSend through a
// store where crediting the receiver fails after the sender's debit has
// already been persisted, and checks that revertOperations undoes exactly
// that debit and marks the transaction failed_reverted.
func TestRunSendRevertsSenderDebitOnReceiverFailure(t *testing.T) {
	inner := NewUserStore()
	require.NoError(t, inner.Create("alice"))
	require.NoError(t, inner.Create("bob"))
	require.NoError(t, inner.Update("alice", map[string]int64{"USD": 1000}))
	users := &failOnUpdateStore{memUserStore: inner, failFor: "bob"}

	txlog := NewTransactionLog()
	bus := newCompletionBus(1)
	log := zerolog.Nop()

	req := workerRequest{Type: TxSend, Sender: "alice", Receiver: "bob", Amount: 500, Currency: "USD", TxID: uuid.New()}
	runWorker(snowflake.ID(3), req, users, txlog, bus, &log)

	out := <-bus
	require.Equal(t, outcomeFailed, out.Kind)
	assert.Equal(t, ErrUnexpected, out.Reason)
	assert.ElementsMatch(t, []string{"alice", "bob"}, out.Users)

	alice, err := inner.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), alice.Balances["USD"], "sender's debit must be reverted")

	tx, err := txlog.Get(req.TxID)
	require.NoError(t, err)
	assert.Equal(t, TxFailedReverted, tx.Status)
}

func TestRevertOperationsMarksOpsReverted(t *testing.T) {
	users := NewUserStore()
	txlog := NewTransactionLog()
	require.NoError(t, users.Create("alice"))
	require.NoError(t, users.Update("alice", map[string]int64{"USD": 1000}))
	log := zerolog.Nop()

	tx := &Transaction{ID: uuid.New(), Type: TxWithdraw, Status: TxInProgress}
	require.NoError(t, txlog.Create(tx))

	_, err := applyOperation(tx, users, txlog, "alice", 1000, Debit, "USD", 300)
	require.NoError(t, err)

	revertOperations(tx, users, txlog, errors.New("downstream failure"), &log)

	u, err := users.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), u.Balances["USD"])

	got, err := txlog.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, TxFailedReverted, got.Status)
	require.Len(t, got.Operations, 1)
	assert.Equal(t, OpReverted, got.Operations[0].Status)
}
