package txgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserBalanceNilSafe(t *testing.T) {
	u := &User{ID: "alice"}
	assert.Equal(t, int64(0), u.balance("USD"))
}

func TestUserBalanceMissingCurrency(t *testing.T) {
	u := &User{ID: "alice", Balances: map[string]int64{"USD": 500}}
	assert.Equal(t, int64(0), u.balance("EUR"))
	assert.Equal(t, int64(500), u.balance("USD"))
}

func TestCloneBalancesIsIndependent(t *testing.T) {
	src := map[string]int64{"USD": 100}
	dst := cloneBalances(src)
	dst["USD"] = 999
	assert.Equal(t, int64(100), src["USD"])
}
