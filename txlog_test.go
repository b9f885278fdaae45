package txgateway_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ledgercore/txgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionLogCreateGet(t *testing.T) {
	log := txgateway.NewTransactionLog()
	tx := &txgateway.Transaction{
		ID:     uuid.New(),
		Type:   txgateway.TxDeposit,
		Status: txgateway.TxInProgress,
	}
	require.NoError(t, log.Create(tx))

	got, err := log.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, txgateway.TxInProgress, got.Status)
}

func TestTransactionLogUpdateIndexesOnlyOnTerminalStatus(t *testing.T) {
	log := txgateway.NewTransactionLog()
	tx := &txgateway.Transaction{
		ID:     uuid.New(),
		Type:   txgateway.TxDeposit,
		Status: txgateway.TxInProgress,
		Operations: []txgateway.Operation{
			{Direction: txgateway.Credit, Username: "alice", Currency: "USD", Amount: 100, PostBalance: 100, Status: txgateway.OpFinished},
		},
	}
	require.NoError(t, log.Create(tx))

	assert.Empty(t, log.ForUser("alice"))

	finished := txgateway.TxFinished
	require.NoError(t, log.Update(tx.ID, txgateway.TxPatch{Status: &finished}))

	ids := log.ForUser("alice")
	require.Len(t, ids, 1)
	assert.Equal(t, tx.ID, ids[0])
}

func TestTransactionLogGetUnknown(t *testing.T) {
	log := txgateway.NewTransactionLog()
	_, err := log.Get(uuid.New())
	assert.Error(t, err)
}
