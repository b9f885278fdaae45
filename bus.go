package txgateway

import "github.com/bwmarrin/snowflake"

// outcomeKind distinguishes the two shapes an outcome message can take.
type outcomeKind int

const (
	outcomeFinished outcomeKind = iota
	outcomeFailed
)

// userBalance is one (username, new balance) pair carried on a finished
// outcome.
type userBalance struct {
	Username string
	Balance  int64
}

// outcome is the single message type every Worker publishes on the
// completion bus, exactly once, on its own goroutine.
type outcome struct {
	Kind     outcomeKind
	Worker   snowflake.ID
	Type     TxType
	Sender   userBalance
	Receiver *userBalance // only set for TxSend
	Reason   ErrKind
	Users    []string // usernames to advance on failure
}

// completionBus is the one-to-few dispatch channel from every Worker to
// the single Gateway event loop. Ordering per worker is preserved by the
// fact that a worker sends exactly one message; ordering across workers is
// whatever the channel happens to deliver.
type completionBus chan outcome

func newCompletionBus(capacity int) completionBus {
	return make(completionBus, capacity)
}
