package txgateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type balanceJSONResp struct {
	Balance float64 `json:"balance"`
}

type sendJSONResp struct {
	FromBalance float64 `json:"from_balance"`
	ToBalance   float64 `json:"to_balance"`
}

// NewHTTPHandler builds the public HTTP transport (C10) over svc, routing
// the six operations under /users.
func NewHTTPHandler(svc Service, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.NotFound(HTTPNotFound)
	mux.Post("/users", hndlr.CreateUser)
	mux.Route("/users/{username}", func(r chi.Router) {
		r.Post("/deposit", hndlr.Deposit)
		r.Post("/withdraw", hndlr.Withdraw)
		r.Post("/send", hndlr.Send)
		r.Get("/balance", hndlr.Balance)
		r.Get("/statement", hndlr.Statement)
	})

	return mux
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

func (h *httpHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", "create_user").Msg("error reading HTTP request")
		WriteHTTPError(w, NewError(ErrUnexpected))
		return
	}
	var req CreateUserReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.Log.Err(err).Str("method", "create_user").Msg("error unmarshalling JSON")
		WriteHTTPError(w, NewBadRequest(map[string]string{"request body": "malformed JSON"}))
		return
	}
	if err = h.Svc.CreateUser(req); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", "deposit").Msg("error reading HTTP request")
		WriteHTTPError(w, NewError(ErrUnexpected))
		return
	}
	var req ChargeReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.Log.Err(err).Str("method", "deposit").Msg("error unmarshalling JSON")
		WriteHTTPError(w, NewBadRequest(map[string]string{"request body": "malformed JSON"}))
		return
	}
	req.Username = chi.URLParam(r, "username")
	bal, err := h.Svc.Deposit(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, balanceJSONResp{Balance: bal})
}

func (h *httpHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", "withdraw").Msg("error reading HTTP request")
		WriteHTTPError(w, NewError(ErrUnexpected))
		return
	}
	var req ChargeReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.Log.Err(err).Str("method", "withdraw").Msg("error unmarshalling JSON")
		WriteHTTPError(w, NewBadRequest(map[string]string{"request body": "malformed JSON"}))
		return
	}
	req.Username = chi.URLParam(r, "username")
	bal, err := h.Svc.Withdraw(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, balanceJSONResp{Balance: bal})
}

func (h *httpHandler) Send(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", "send").Msg("error reading HTTP request")
		WriteHTTPError(w, NewError(ErrUnexpected))
		return
	}
	var req SendReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.Log.Err(err).Str("method", "send").Msg("error unmarshalling JSON")
		WriteHTTPError(w, NewBadRequest(map[string]string{"request body": "malformed JSON"}))
		return
	}
	req.From = chi.URLParam(r, "username")
	fromBal, toBal, err := h.Svc.Send(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, sendJSONResp{FromBalance: fromBal, ToBalance: toBal})
}

func (h *httpHandler) Balance(w http.ResponseWriter, r *http.Request) {
	req := BalanceReq{
		Username: chi.URLParam(r, "username"),
		Currency: r.URL.Query().Get("currency"),
	}
	bal, err := h.Svc.Balance(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, balanceJSONResp{Balance: bal})
}

func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	req := StatementReq{Username: chi.URLParam(r, "username")}
	w.Header().Set("Content-Type", "application/pdf")
	if err := h.Svc.Statement(w, req); err != nil {
		WriteHTTPError(w, err)
		return
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// WriteHTTPError maps the taxonomy's error kinds to HTTP status codes and
// writes a JSON body describing the failure.
func WriteHTTPError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var te Error
	if !errors.As(err, &te) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "server error"})
		return
	}

	status := http.StatusInternalServerError
	switch te.Kind {
	case ErrWrongArguments:
		status = http.StatusBadRequest
	case ErrUserAlreadyExists:
		status = http.StatusConflict
	case ErrUserDoesNotExist, ErrSenderNotFound, ErrReceiverNotFound:
		status = http.StatusNotFound
	case ErrNotEnoughFunds:
		status = http.StatusUnprocessableEntity
	case ErrTooManyRequestsToUser:
		status = http.StatusTooManyRequests
	}
	w.WriteHeader(status)
	resp := map[string]any{"kind": te.Kind}
	if len(te.Fields) > 0 {
		resp["fields"] = te.Fields
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
}
