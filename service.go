package txgateway

import "io"

// CreateUserReq is the sole input to CreateUser.
type CreateUserReq struct {
	Username string
}

// ChargeReq is the input shared by Deposit and Withdraw.
type ChargeReq struct {
	Username string
	Currency string
	Amount   float64
}

// SendReq is the input to Send.
type SendReq struct {
	From     string
	To       string
	Currency string
	Amount   float64
}

// BalanceReq is the input to Balance.
type BalanceReq struct {
	Username string
	Currency string
}

// StatementReq is the input to Statement.
type StatementReq struct {
	Username string
}

// Service is the public API: argument validation, money parse/format,
// and delegation to the Gateway or the user store.
type Service interface {
	CreateUser(CreateUserReq) error
	Deposit(ChargeReq) (float64, error)
	Withdraw(ChargeReq) (float64, error)
	Send(SendReq) (float64, float64, error)
	Balance(BalanceReq) (float64, error)
	Statement(io.Writer, StatementReq) error
}

type serviceImpl struct {
	gw    *Gateway
	users UserStore
	txlog TransactionLog
}

var _ Service = (*serviceImpl)(nil)

// NewService builds the public API over a Gateway, its backing user
// store, and the transaction log the statement exporter reads from.
func NewService(gw *Gateway, users UserStore, txlog TransactionLog) *serviceImpl {
	return &serviceImpl{gw: gw, users: users, txlog: txlog}
}

func (s *serviceImpl) CreateUser(req CreateUserReq) error {
	if req.Username == "" {
		return NewBadRequest(map[string]string{"user": "missing or invalid"})
	}
	if err := s.users.Create(req.Username); err != nil {
		return err
	}
	return nil
}

func (s *serviceImpl) Deposit(req ChargeReq) (float64, error) {
	amt, err := validateCharge(req)
	if err != nil {
		return 0, err
	}
	r := s.gw.Submit(Request{Kind: ReqDeposit, From: req.Username, Currency: req.Currency, Amount: amt})
	if r.Err != nil {
		return 0, r.Err
	}
	return formatMoney(r.Balance), nil
}

func (s *serviceImpl) Withdraw(req ChargeReq) (float64, error) {
	amt, err := validateCharge(req)
	if err != nil {
		return 0, err
	}
	r := s.gw.Submit(Request{Kind: ReqWithdraw, From: req.Username, Currency: req.Currency, Amount: amt})
	if r.Err != nil {
		return 0, r.Err
	}
	return formatMoney(r.Balance), nil
}

func (s *serviceImpl) Send(req SendReq) (float64, float64, error) {
	if req.From == "" || req.To == "" || req.Currency == "" {
		return 0, 0, NewBadRequest(map[string]string{"user": "missing or invalid", "currency": "missing or invalid"})
	}
	if req.From == req.To {
		return 0, 0, NewBadRequest(map[string]string{"to": "must differ from from"})
	}
	amt, ok := parseMoney(req.Amount)
	if !ok || amt <= 0 {
		return 0, 0, NewBadRequest(map[string]string{"amount": "must be a positive number"})
	}
	r := s.gw.Submit(Request{Kind: ReqSend, From: req.From, To: req.To, Currency: req.Currency, Amount: amt})
	if r.Err != nil {
		return 0, 0, r.Err
	}
	return formatMoney(r.FromBalance), formatMoney(r.ToBalance), nil
}

func (s *serviceImpl) Balance(req BalanceReq) (float64, error) {
	if req.Username == "" || req.Currency == "" {
		return 0, NewBadRequest(map[string]string{"user": "missing or invalid", "currency": "missing or invalid"})
	}
	r := s.gw.Submit(Request{Kind: ReqBalance, From: req.Username, Currency: req.Currency})
	if r.Err != nil {
		return 0, r.Err
	}
	return formatMoney(r.Balance), nil
}

// Statement renders the requesting user's transaction history to w as a
// PDF document (C8). It reads only C2/C3 and never touches the Gateway,
// so it cannot be delayed by, or interfere with, per-user admission.
func (s *serviceImpl) Statement(w io.Writer, req StatementReq) error {
	if req.Username == "" {
		return NewBadRequest(map[string]string{"user": "missing or invalid"})
	}
	usr, err := s.users.Get(req.Username)
	if err != nil {
		return err
	}
	ids := s.txlog.ForUser(req.Username)
	txs := make([]*Transaction, 0, len(ids))
	for _, id := range ids {
		tx, err := s.txlog.Get(id)
		if err != nil {
			continue
		}
		txs = append(txs, tx)
	}
	return renderStatement(w, usr, txs)
}

// validateCharge applies the shared Deposit/Withdraw argument checks and
// returns the parsed integer minor-unit amount.
func validateCharge(req ChargeReq) (int64, error) {
	if req.Username == "" || req.Currency == "" {
		return 0, NewBadRequest(map[string]string{"user": "missing or invalid", "currency": "missing or invalid"})
	}
	amt, ok := parseMoney(req.Amount)
	if !ok || amt <= 0 {
		return 0, NewBadRequest(map[string]string{"amount": "must be a positive number"})
	}
	return amt, nil
}
