package txgateway

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) *Gateway {
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	log := zerolog.Nop()
	return &Gateway{
		users:    NewUserStore(),
		txlog:    NewTransactionLog(),
		log:      &log,
		bus:      newCompletionBus(256),
		submits:  make(chan submitEvent, 256),
		advance:  make(chan advanceEvent, 256),
		node:     node,
		slots:    make(map[string]*slot),
		inflight: make(map[snowflake.ID]Waiter),
		done:     make(chan struct{}),
	}
}

// TestAdmitSingleBoundary drives admitSingle directly, off the event loop,
// so the 10-deep queue and the 11th rejection are observed deterministically
// instead of racing background workers.
func TestAdmitSingleBoundary(t *testing.T) {
	g := newTestGateway(t)
	require.NoError(t, g.users.Create("alice"))

	for i := 0; i < 10; i++ {
		w := newWaiter()
		g.admitSingle(Request{Kind: ReqDeposit, From: "alice", Currency: "USD", Amount: 100}, w)
	}

	s := g.slots["alice"]
	require.NotNil(t, s)
	assert.Equal(t, slotBusy, s.status)
	assert.Equal(t, maxPendingPerUser, s.pendingCount)
	assert.Len(t, s.queue, maxPendingPerUser-1)

	w := newWaiter()
	g.admitSingle(Request{Kind: ReqDeposit, From: "alice", Currency: "USD", Amount: 100}, w)
	r := <-w
	assert.ErrorIs(t, r.Err, NewError(ErrTooManyRequestsToUser))
	assert.Equal(t, maxPendingPerUser, s.pendingCount)
}

func TestAdmitSingleUnknownUser(t *testing.T) {
	g := newTestGateway(t)
	w := newWaiter()
	g.admitSingle(Request{Kind: ReqDeposit, From: "ghost", Currency: "USD", Amount: 100}, w)
	r := <-w
	assert.ErrorIs(t, r.Err, NewError(ErrUserDoesNotExist))
	_, ok := g.slots["ghost"]
	assert.False(t, ok, "unknown user's slot must not survive rejection")
}

// TestAdmitSendUnknownSender checks that a send from a nonexistent sender
// is rejected with sender_not_found and leaves no slot behind.
func TestAdmitSendUnknownSender(t *testing.T) {
	g := newTestGateway(t)
	require.NoError(t, g.users.Create("alice"))

	w := newWaiter()
	g.admitSend(Request{Kind: ReqSend, From: "ghost", To: "alice", Currency: "USD", Amount: 100}, w)
	r := <-w
	assert.ErrorIs(t, r.Err, NewError(ErrSenderNotFound))
	_, ok := g.slots["ghost"]
	assert.False(t, ok, "unknown sender's slot must not survive rejection")
}

// TestAdmitSendUnknownReceiver checks that a send to a nonexistent
// receiver is rejected with receiver_not_found and leaves the sender's
// slot untouched for a later, valid send.
func TestAdmitSendUnknownReceiver(t *testing.T) {
	g := newTestGateway(t)
	require.NoError(t, g.users.Create("alice"))

	w := newWaiter()
	g.admitSend(Request{Kind: ReqSend, From: "alice", To: "ghost", Currency: "USD", Amount: 100}, w)
	r := <-w
	assert.ErrorIs(t, r.Err, NewError(ErrReceiverNotFound))
	_, ok := g.slots["ghost"]
	assert.False(t, ok, "unknown receiver's slot must not survive rejection")

	s := g.slots["alice"]
	require.NotNil(t, s)
	assert.Equal(t, slotAvailable, s.status, "sender's slot must not stay locked after the receiver check fails")
}

// TestAdmitSendBlocksOnBusyReceiver verifies a SEND whose sender is free
// but whose receiver is busy occupies the sender's "+1 busy" unit via
// s.blocked, not via s.queue, and registers on the receiver's waitlist.
func TestAdmitSendBlocksOnBusyReceiver(t *testing.T) {
	g := newTestGateway(t)
	require.NoError(t, g.users.Create("alice"))
	require.NoError(t, g.users.Create("bob"))

	r := g.getOrCreateSlot("bob")
	r.status = slotBusy

	w := newWaiter()
	g.admitSend(Request{Kind: ReqSend, From: "alice", To: "bob", Currency: "USD", Amount: 100}, w)

	s := g.slots["alice"]
	require.NotNil(t, s)
	assert.Equal(t, slotBusy, s.status)
	assert.Equal(t, 1, s.pendingCount)
	assert.Empty(t, s.queue)
	require.NotNil(t, s.blocked)
	assert.Contains(t, r.waitlist, "alice")
}

// TestHandleAdvanceRejectsQueuedSendToUnknownReceiver covers the case
// admitSend's slotAvailable fast path can't: a SEND submitted while its
// sender is already busy with an unrelated op is queued without any
// existence check on the receiver, so that check must happen when the
// queued SEND is dequeued in handleAdvance instead.
func TestHandleAdvanceRejectsQueuedSendToUnknownReceiver(t *testing.T) {
	g := newTestGateway(t)
	require.NoError(t, g.users.Create("alice"))

	s := g.getOrCreateSlot("alice")
	s.status = slotBusy
	s.pendingCount = 1

	w := newWaiter()
	g.admitSend(Request{Kind: ReqSend, From: "alice", To: "ghost", Currency: "USD", Amount: 100}, w)
	require.Len(t, s.queue, 1)
	assert.Equal(t, 2, s.pendingCount)

	g.handleAdvance("alice")

	r := <-w
	assert.ErrorIs(t, r.Err, NewError(ErrReceiverNotFound))
	_, ok := g.slots["ghost"]
	assert.False(t, ok, "a receiver that fails its existence check must never get a slot")

	select {
	case ev := <-g.advance:
		g.handleAdvance(ev.username)
	default:
		t.Fatal("expected the rejection to re-post an advance for alice")
	}
	assert.Equal(t, slotAvailable, s.status)
	assert.Equal(t, 0, s.pendingCount)
}

// TestHandleAdvanceUnblocksWaitingSender verifies that once the receiver
// frees up and advances, the blocked SEND is dispatched and the receiver's
// slot becomes busy again for the duration of that send.
func TestHandleAdvanceUnblocksWaitingSender(t *testing.T) {
	g := newTestGateway(t)
	require.NoError(t, g.users.Create("alice"))
	require.NoError(t, g.users.Create("bob"))

	r := g.getOrCreateSlot("bob")
	r.status = slotBusy

	w := newWaiter()
	g.admitSend(Request{Kind: ReqSend, From: "alice", To: "bob", Currency: "USD", Amount: 100}, w)

	r.status = slotAvailable
	r.pendingCount = 0
	g.handleAdvance("bob")

	// drain the advance events handleAdvance posted, as the event loop
	// would if it were running.
	select {
	case ev := <-g.advance:
		g.handleAdvance(ev.username)
	default:
		t.Fatal("expected bob's advance to notify alice's blocked send")
	}

	s := g.slots["alice"]
	assert.Nil(t, s.blocked)
	assert.Equal(t, slotBusy, r.status)
	assert.Equal(t, 1, r.pendingCount)
}
