package txgateway

import (
	"context"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

// Middleware decorates a Service with cross-cutting behavior. Chain
// applies them outermost-first: Chain(a, b)(svc) behaves like a(b(svc)).
type Middleware func(Service) Service

func Chain(mws ...Middleware) Middleware {
	return func(svc Service) Service {
		for i := len(mws) - 1; i >= 0; i-- {
			svc = mws[i](svc)
		}
		return svc
	}
}

//
// Rate limiting middleware
//

// limitMiddleware limits the number of in-flight requests to the service by
// using a weighted semaphore, i.e., x/sync/semaphore.Weighted, with an
// acquisition timeout. As limits are static and servers may be deployed to
// a heterogeneous set of machines, hence, having to manually tune limits
// for each server, this solution is something likely implemented very
// differently in a real-world application, but it is a good example of
// load shedding in front of the Gateway's own per-user admission.
type limitMiddleware struct {
	next    Service
	limits  *ServiceLimits
	timeout time.Duration
}

var (
	_ Service = (*limitMiddleware)(nil)
)

type ServiceLimits struct {
	CreateUser *semaphore.Weighted
	Deposit    *semaphore.Weighted
	Withdraw   *semaphore.Weighted
	Send       *semaphore.Weighted
	Balance    *semaphore.Weighted
	Statement  *semaphore.Weighted
}

// NewServiceLimits builds a ServiceLimits with n permits for every operation.
func NewServiceLimits(n int64) *ServiceLimits {
	return &ServiceLimits{
		CreateUser: semaphore.NewWeighted(n),
		Deposit:    semaphore.NewWeighted(n),
		Withdraw:   semaphore.NewWeighted(n),
		Send:       semaphore.NewWeighted(n),
		Balance:    semaphore.NewWeighted(n),
		Statement:  semaphore.NewWeighted(n),
	}
}

func NewLimitMiddleware(limits *ServiceLimits, timeout time.Duration) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:    next,
			limits:  limits,
			timeout: timeout,
		}
	}
}

func (l *limitMiddleware) acquire(sem *semaphore.Weighted) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		return NewError(ErrUnexpected)
	}
	return nil
}

func (l *limitMiddleware) CreateUser(req CreateUserReq) error {
	if err := l.acquire(l.limits.CreateUser); err != nil {
		return err
	}
	defer l.limits.CreateUser.Release(1)
	return l.next.CreateUser(req)
}

func (l *limitMiddleware) Deposit(req ChargeReq) (float64, error) {
	if err := l.acquire(l.limits.Deposit); err != nil {
		return 0, err
	}
	defer l.limits.Deposit.Release(1)
	return l.next.Deposit(req)
}

func (l *limitMiddleware) Withdraw(req ChargeReq) (float64, error) {
	if err := l.acquire(l.limits.Withdraw); err != nil {
		return 0, err
	}
	defer l.limits.Withdraw.Release(1)
	return l.next.Withdraw(req)
}

func (l *limitMiddleware) Send(req SendReq) (float64, float64, error) {
	if err := l.acquire(l.limits.Send); err != nil {
		return 0, 0, err
	}
	defer l.limits.Send.Release(1)
	return l.next.Send(req)
}

func (l *limitMiddleware) Balance(req BalanceReq) (float64, error) {
	if err := l.acquire(l.limits.Balance); err != nil {
		return 0, err
	}
	defer l.limits.Balance.Release(1)
	return l.next.Balance(req)
}

func (l *limitMiddleware) Statement(w io.Writer, req StatementReq) error {
	if err := l.acquire(l.limits.Statement); err != nil {
		return err
	}
	defer l.limits.Statement.Release(1)
	return l.next.Statement(w, req)
}

//
// Circuit breaking middleware
//

type sendResult struct {
	From float64
	To   float64
}

type ServiceBreaker struct {
	CreateUser *gobreaker.CircuitBreaker[any]
	Deposit    *gobreaker.CircuitBreaker[float64]
	Withdraw   *gobreaker.CircuitBreaker[float64]
	Send       *gobreaker.CircuitBreaker[sendResult]
	Balance    *gobreaker.CircuitBreaker[float64]
	Statement  *gobreaker.CircuitBreaker[any]
}

// NewServiceBreaker builds a ServiceBreaker with the same settings for
// every operation: trip after 5 consecutive failures, half-open after a
// 10s cooldown.
func NewServiceBreaker(name string) *ServiceBreaker {
	st := func(op string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name + "." + op,
			Timeout: 10 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}
	}
	return &ServiceBreaker{
		CreateUser: gobreaker.NewCircuitBreaker[any](st("create_user")),
		Deposit:    gobreaker.NewCircuitBreaker[float64](st("deposit")),
		Withdraw:   gobreaker.NewCircuitBreaker[float64](st("withdraw")),
		Send:       gobreaker.NewCircuitBreaker[sendResult](st("send")),
		Balance:    gobreaker.NewCircuitBreaker[float64](st("balance")),
		Statement:  gobreaker.NewCircuitBreaker[any](st("statement")),
	}
}

// circuitBreakMiddleware is a middleware that implements the circuit
// breaker pattern. It works in conjunction with limitMiddleware to limit
// the number of in-flight requests to the service when the circuit is not
// in `closed` state, i.e., the Gateway or a store behind it is failing
// consistently and further load should be shed before it reaches the
// limit semaphores at all.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

func (c *circuitBreakMiddleware) CreateUser(req CreateUserReq) error {
	_, err := c.brkrs.CreateUser.Execute(func() (any, error) {
		return nil, c.next.CreateUser(req)
	})
	return unwrapBreakerErr(err)
}

func (c *circuitBreakMiddleware) Deposit(req ChargeReq) (float64, error) {
	bal, err := c.brkrs.Deposit.Execute(func() (float64, error) {
		return c.next.Deposit(req)
	})
	return bal, unwrapBreakerErr(err)
}

func (c *circuitBreakMiddleware) Withdraw(req ChargeReq) (float64, error) {
	bal, err := c.brkrs.Withdraw.Execute(func() (float64, error) {
		return c.next.Withdraw(req)
	})
	return bal, unwrapBreakerErr(err)
}

func (c *circuitBreakMiddleware) Send(req SendReq) (float64, float64, error) {
	res, err := c.brkrs.Send.Execute(func() (sendResult, error) {
		from, to, err := c.next.Send(req)
		return sendResult{From: from, To: to}, err
	})
	return res.From, res.To, unwrapBreakerErr(err)
}

func (c *circuitBreakMiddleware) Balance(req BalanceReq) (float64, error) {
	bal, err := c.brkrs.Balance.Execute(func() (float64, error) {
		return c.next.Balance(req)
	})
	return bal, unwrapBreakerErr(err)
}

func (c *circuitBreakMiddleware) Statement(w io.Writer, req StatementReq) error {
	_, err := c.brkrs.Statement.Execute(func() (any, error) {
		return nil, c.next.Statement(w, req)
	})
	return unwrapBreakerErr(err)
}

// unwrapBreakerErr maps gobreaker's own sentinel errors onto the taxonomy
// and passes through whatever Error the wrapped call already produced.
func unwrapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return NewError(ErrUnexpected)
	}
	return err
}
