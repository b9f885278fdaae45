package txgateway_test

import (
	"testing"

	"github.com/ledgercore/txgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreCreate(t *testing.T) {
	s := txgateway.NewUserStore()
	require.NoError(t, s.Create("alice"))

	err := s.Create("alice")
	assert.ErrorIs(t, err, txgateway.NewError(txgateway.ErrUserAlreadyExists))
}

func TestUserStoreGetUnknown(t *testing.T) {
	s := txgateway.NewUserStore()
	_, err := s.Get("nobody")
	assert.ErrorIs(t, err, txgateway.NewError(txgateway.ErrUserDoesNotExist))
}

func TestUserStoreUpdateIsDefensive(t *testing.T) {
	s := txgateway.NewUserStore()
	require.NoError(t, s.Create("alice"))
	require.NoError(t, s.Update("alice", map[string]int64{"USD": 100}))

	u, err := s.Get("alice")
	require.NoError(t, err)
	u.Balances["USD"] = 999999

	u2, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), u2.Balances["USD"])
}

func TestUserStoreUpdateUnknown(t *testing.T) {
	s := txgateway.NewUserStore()
	err := s.Update("nobody", map[string]int64{"USD": 1})
	assert.ErrorIs(t, err, txgateway.NewError(txgateway.ErrUserDoesNotExist))
}
