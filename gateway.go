package txgateway

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxPendingPerUser is the per-account bounded admission queue capacity.
// It is a spec invariant, not configuration.
const maxPendingPerUser = 10

// slotStatus is the state of a per-user gateway slot.
type slotStatus int

const (
	slotAvailable slotStatus = iota
	slotBusy
)

// queuedRequest pairs a submitted request with the waiter that will
// receive its eventual reply.
type queuedRequest struct {
	req    Request
	waiter Waiter
}

// slot is the Gateway's per-user bookkeeping record.
type slot struct {
	id           string
	status       slotStatus
	pendingCount int
	queue        []queuedRequest
	// blocked is a SEND that has already been admitted and counted (it
	// occupies this slot's "+1 busy" unit) but cannot yet be dispatched
	// because the receiver is busy. It is never also present in queue.
	blocked *queuedRequest
	// waitlist holds usernames of senders whose admitted SEND is blocked
	// on this slot becoming available as a receiver. Notified, not polled.
	waitlist []string
}

// RequestKind enumerates the four operations Submit accepts.
type RequestKind int

const (
	ReqDeposit RequestKind = iota
	ReqWithdraw
	ReqSend
	ReqBalance
)

// Request is one client submission to the Gateway.
type Request struct {
	Kind     RequestKind
	From     string
	To       string // only for ReqSend
	Currency string
	Amount   int64 // minor units; unused for ReqBalance
}

// Reply is the single value ever written to a Waiter.
type Reply struct {
	Balance     int64
	FromBalance int64
	ToBalance   int64
	Err         error
}

// Waiter is a one-shot reply handle. The Gateway writes to it exactly once
// and never reads from it. A send to a channel nobody ever receives from
// again (a caller that went away) is harmless — it is buffered.
type Waiter chan Reply

func newWaiter() Waiter {
	return make(Waiter, 1)
}

func reply(w Waiter, r Reply) {
	if w == nil {
		return
	}
	select {
	case w <- r:
	default:
	}
}

// internal event types fed through the Gateway's single event loop.
type advanceEvent struct {
	username string
}

type submitEvent struct {
	req    Request
	waiter Waiter
}

// Gateway is the Transaction Gateway: the single coordinator that admits,
// serializes, queues, dispatches, and reconciles every per-user operation.
// All exported methods are safe to call from any number of goroutines;
// internally, a single event-loop goroutine owns all slot state so no
// locking is needed for the Gateway's own bookkeeping.
type Gateway struct {
	users UserStore
	txlog TransactionLog
	log   *zerolog.Logger

	bus     completionBus
	submits chan submitEvent
	advance chan advanceEvent

	node *snowflake.Node

	// slots and inflight are owned exclusively by loop; no lock needed.
	slots    map[string]*slot
	inflight map[snowflake.ID]Waiter

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// NewGateway builds a Gateway bound to the given stores and starts its
// event loop. Call Close to stop the loop.
func NewGateway(users UserStore, txlog TransactionLog, log *zerolog.Logger) (*Gateway, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	g := &Gateway{
		users:    users,
		txlog:    txlog,
		log:      log,
		bus:      newCompletionBus(256),
		submits:  make(chan submitEvent, 256),
		advance:  make(chan advanceEvent, 256),
		node:     node,
		slots:    make(map[string]*slot),
		inflight: make(map[snowflake.ID]Waiter),
		done:     make(chan struct{}),
	}
	g.wg.Add(1)
	go g.loop()
	return g, nil
}

// Close stops the event loop and waits for the loop goroutine to return.
// It neither stops nor waits for running workers, and events still
// buffered on the submit, completion or advance channels are not processed.
func (g *Gateway) Close() {
	g.stopOnce.Do(func() {
		close(g.done)
	})
	g.wg.Wait()
}

// Submit is the Gateway's single public entry point. It blocks until the
// request is admitted synchronously (success or error) or, for an
// enqueued/dispatched request, until the corresponding worker publishes a
// terminal outcome.
func (g *Gateway) Submit(req Request) Reply {
	w := newWaiter()
	select {
	case g.submits <- submitEvent{req: req, waiter: w}:
	case <-g.done:
		return Reply{Err: NewError(ErrUnexpected)}
	}
	r := <-w
	return r
}

// loop is the Gateway's single-threaded coordinator. Every state
// transition on slots/inflight happens here, and only here.
func (g *Gateway) loop() {
	defer g.wg.Done()
	for {
		select {
		case ev := <-g.submits:
			g.handleSubmit(ev.req, ev.waiter)
		case out := <-g.bus:
			g.handleOutcome(out)
		case ev := <-g.advance:
			g.handleAdvance(ev.username)
		case <-g.done:
			return
		}
	}
}

func (g *Gateway) getOrCreateSlot(username string) *slot {
	s, ok := g.slots[username]
	if !ok {
		s = &slot{id: username, status: slotAvailable}
		g.slots[username] = s
	}
	return s
}

func (g *Gateway) handleSubmit(req Request, w Waiter) {
	if req.Kind == ReqSend {
		g.admitSend(req, w)
		return
	}
	g.admitSingle(req, w)
}

// admitSingle admits a deposit, withdraw, or balance request against its
// single user's slot: dispatch immediately if the slot is free, queue if
// busy but under the per-user bound, reject otherwise.
func (g *Gateway) admitSingle(req Request, w Waiter) {
	u := g.getOrCreateSlot(req.From)

	if u.status == slotAvailable {
		if _, err := g.users.Get(req.From); err != nil {
			delete(g.slots, req.From)
			reply(w, Reply{Err: NewError(ErrUserDoesNotExist)})
			return
		}
		u.status = slotBusy
		u.pendingCount++

		if req.Kind == ReqBalance {
			usr, err := g.users.Get(req.From)
			if err != nil {
				reply(w, Reply{Err: NewError(ErrUserDoesNotExist)})
			} else {
				reply(w, Reply{Balance: usr.balance(req.Currency)})
			}
			g.postAdvance(req.From)
			return
		}

		g.dispatch(req, w)
		return
	}

	if u.pendingCount >= maxPendingPerUser {
		reply(w, Reply{Err: NewError(ErrTooManyRequestsToUser)})
		return
	}
	u.queue = append(u.queue, queuedRequest{req: req, waiter: w})
	u.pendingCount++
}

// admitSend admits a send by locking the sender's slot first. When the
// sender slot is itself fresh (available), it takes the lock immediately
// regardless of the receiver's state — otherwise a second, unrelated
// request for the same sender could be admitted ahead of this one and
// violate per-user ordering. If the receiver is busy at that point, the
// send is held in the sender's s.blocked (not in its queue) and the
// sender registers on the receiver's waitlist instead of busy-polling.
// The receiver's slot is only looked up once both users are known to
// exist; a send queued behind a busy sender leaves it untouched.
func (g *Gateway) admitSend(req Request, w Waiter) {
	s := g.getOrCreateSlot(req.From)

	if s.status == slotAvailable {
		if _, err := g.users.Get(req.From); err != nil {
			delete(g.slots, req.From)
			reply(w, Reply{Err: NewError(ErrSenderNotFound)})
			return
		}
		if _, err := g.users.Get(req.To); err != nil {
			delete(g.slots, req.To)
			reply(w, Reply{Err: NewError(ErrReceiverNotFound)})
			return
		}

		s.status = slotBusy
		s.pendingCount = 1

		r := g.getOrCreateSlot(req.To)
		if r.status == slotAvailable {
			r.status = slotBusy
			r.pendingCount = 1
			g.dispatch(req, w)
			return
		}

		qr := queuedRequest{req: req, waiter: w}
		s.blocked = &qr
		g.addWaitlist(r, req.From)
		return
	}

	if s.pendingCount >= maxPendingPerUser {
		reply(w, Reply{Err: NewError(ErrTooManyRequestsToUser)})
		return
	}
	s.queue = append(s.queue, queuedRequest{req: req, waiter: w})
	s.pendingCount++
}

// dispatch spawns a Worker goroutine for an admitted deposit/withdraw/send
// request and registers its waiter under a freshly minted handle.
func (g *Gateway) dispatch(req Request, w Waiter) {
	handle := g.node.Generate()
	g.inflight[handle] = w

	wr := workerRequest{
		Sender:   req.From,
		Receiver: req.To,
		Amount:   req.Amount,
		Currency: req.Currency,
		TxID:     uuid.New(),
	}
	switch req.Kind {
	case ReqDeposit:
		wr.Type = TxDeposit
	case ReqWithdraw:
		wr.Type = TxWithdraw
	case ReqSend:
		wr.Type = TxSend
	}

	users, txlog, bus, log := g.users, g.txlog, g.bus, g.log
	go runWorker(handle, wr, users, txlog, bus, log)
}

// handleOutcome replies to the waiter for a finished or failed worker run
// and advances every user slot the run touched.
func (g *Gateway) handleOutcome(out outcome) {
	w, ok := g.inflight[out.Worker]
	if ok {
		delete(g.inflight, out.Worker)
	} else if g.log != nil {
		g.log.Warn().Uint64("worker", uint64(out.Worker)).Msg("outcome for unknown worker")
	}

	switch out.Kind {
	case outcomeFinished:
		if out.Receiver != nil {
			reply(w, Reply{FromBalance: out.Sender.Balance, ToBalance: out.Receiver.Balance})
			g.postAdvance(out.Sender.Username)
			g.postAdvance(out.Receiver.Username)
			return
		}
		reply(w, Reply{Balance: out.Sender.Balance})
		g.postAdvance(out.Sender.Username)
	case outcomeFailed:
		kind := ErrUnexpected
		if out.Reason == ErrNotEnoughFunds {
			kind = ErrNotEnoughFunds
		}
		reply(w, Reply{Err: NewError(kind)})
		for _, u := range out.Users {
			g.postAdvance(u)
		}
	}
}

// postAdvance enqueues an advance event. Posting through the channel
// (rather than calling handleAdvance directly) keeps every slot mutation
// on the single loop goroutine and bounds recursion depth to the event
// queue.
func (g *Gateway) postAdvance(username string) {
	select {
	case g.advance <- advanceEvent{username: username}:
	case <-g.done:
	}
}

// handleAdvance frees a finished request's slot and dispatches the next
// queued item, if any. A SEND that is admitted but
// cannot yet be dispatched because the receiver is busy is held in
// s.blocked rather than in s.queue — it already occupies this slot's "+1
// busy" unit, exactly as a dispatched worker would, so it must not also
// count as a queued item. Its sender registers on the receiver's waitlist
// instead of busy-polling; the receiver's own advance wakes it back up.
func (g *Gateway) handleAdvance(username string) {
	s, ok := g.slots[username]
	if !ok {
		return
	}

	if s.blocked != nil {
		g.tryUnblock(s, username)
		return
	}

	if len(s.queue) == 0 {
		s.status = slotAvailable
		s.pendingCount = 0
		waiting := s.waitlist
		s.waitlist = nil
		for _, sender := range waiting {
			g.postAdvance(sender)
		}
		return
	}

	head := s.queue[0]
	s.queue = s.queue[1:]
	s.pendingCount--

	if head.req.Kind == ReqSend {
		// A send queued behind a busy sender was never checked against the
		// user store at submission time (admitSend only checks sender/
		// receiver existence on the slotAvailable fast path). Re-check both
		// here, as if the request had just arrived, before touching the
		// receiver's slot or dispatching a worker.
		if _, err := g.users.Get(head.req.From); err != nil {
			reply(head.waiter, Reply{Err: NewError(ErrSenderNotFound)})
			g.postAdvance(username)
			return
		}
		if _, err := g.users.Get(head.req.To); err != nil {
			reply(head.waiter, Reply{Err: NewError(ErrReceiverNotFound)})
			g.postAdvance(username)
			return
		}

		r := g.getOrCreateSlot(head.req.To)
		if r.status == slotBusy {
			qr := head
			s.blocked = &qr
			g.addWaitlist(r, username)
			return
		}
		r.status = slotBusy
		r.pendingCount = 1
		g.dispatch(head.req, head.waiter)
		return
	}

	if head.req.Kind == ReqBalance {
		usr, err := g.users.Get(head.req.From)
		if err != nil {
			reply(head.waiter, Reply{Err: NewError(ErrUserDoesNotExist)})
		} else {
			reply(head.waiter, Reply{Balance: usr.balance(head.req.Currency)})
		}
		g.postAdvance(username)
		return
	}

	g.dispatch(head.req, head.waiter)
}

// tryUnblock attempts to dispatch a sender's blocked SEND now that it has
// been notified its receiver may be free. If the receiver raced busy
// again, it re-registers and waits for the next notification.
func (g *Gateway) tryUnblock(s *slot, username string) {
	qr := s.blocked
	r := g.getOrCreateSlot(qr.req.To)
	if r.status == slotBusy {
		g.addWaitlist(r, username)
		return
	}
	s.blocked = nil
	r.status = slotBusy
	r.pendingCount = 1
	g.dispatch(qr.req, qr.waiter)
}

// addWaitlist registers sender as wanting a notification when r next
// becomes available, without duplicating an existing registration.
func (g *Gateway) addWaitlist(r *slot, sender string) {
	for _, s := range r.waitlist {
		if s == sender {
			return
		}
	}
	r.waitlist = append(r.waitlist, sender)
}
