package txgateway

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// TxPatch carries the only fields Update is allowed to touch. Any other
// field present on a Transaction is left untouched by design.
type TxPatch struct {
	Type       *TxType
	Operations []Operation
	Status     *TxStatus
	FailReason *string
	Worker     *int64
}

// TransactionLog is the keyed store of transactions, independent of the
// user store. Inconsistency between the two on crash is tolerated; this
// system does not reconcile them on restart.
type TransactionLog interface {
	Create(tx *Transaction) error
	Get(id uuid.UUID) (*Transaction, error)
	Update(id uuid.UUID, patch TxPatch) error
	// ForUser returns, best-effort, the ids of transactions this username
	// appears in as sender or receiver. Advisory only — never consulted
	// by the Gateway, only by the read-only statement exporter.
	ForUser(username string) []uuid.UUID
}

type memTxLog struct {
	mu    sync.Mutex
	txs   map[uuid.UUID]*Transaction
	byUsr map[string][]uuid.UUID
}

var _ TransactionLog = (*memTxLog)(nil)

// NewTransactionLog builds an empty in-memory transaction log.
func NewTransactionLog() *memTxLog {
	return &memTxLog{
		txs:   make(map[uuid.UUID]*Transaction),
		byUsr: make(map[string][]uuid.UUID),
	}
}

func (l *memTxLog) Create(tx *Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.txs[tx.ID]; ok {
		return NewError(ErrUnexpected)
	}
	cp := *tx
	cp.Operations = append([]Operation(nil), tx.Operations...)
	l.txs[tx.ID] = &cp
	return nil
}

func (l *memTxLog) Get(id uuid.UUID) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[id]
	if !ok {
		return nil, NewError(ErrUnexpected)
	}
	cp := *tx
	cp.Operations = append([]Operation(nil), tx.Operations...)
	return &cp, nil
}

func (l *memTxLog) Update(id uuid.UUID, patch TxPatch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[id]
	if !ok {
		return NewError(ErrUnexpected)
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Operations != nil {
		tx.Operations = append([]Operation(nil), patch.Operations...)
	}
	if patch.Status != nil {
		tx.Status = *patch.Status
	}
	if patch.FailReason != nil {
		tx.FailReason = *patch.FailReason
	}
	if patch.Worker != nil {
		tx.Worker = snowflake.ID(*patch.Worker)
	}
	if tx.Status == TxFinished || tx.Status == TxFailed || tx.Status == TxFailedReverted {
		l.indexLocked(tx)
	}
	return nil
}

func (l *memTxLog) indexLocked(tx *Transaction) {
	seen := make(map[string]struct{}, 2)
	for _, op := range tx.Operations {
		if _, ok := seen[op.Username]; ok {
			continue
		}
		seen[op.Username] = struct{}{}
		ids := l.byUsr[op.Username]
		for _, id := range ids {
			if id == tx.ID {
				return
			}
		}
		l.byUsr[op.Username] = append(ids, tx.ID)
	}
}

func (l *memTxLog) ForUser(username string) []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uuid.UUID(nil), l.byUsr[username]...)
}
