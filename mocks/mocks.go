// Package mocks holds hand-written gomock-style doubles for the
// interfaces tests in this module need to stub: UserStore, TransactionLog
// and Service. Shaped the way mockgen would emit them.
package mocks

import (
	"io"
	"reflect"

	"github.com/google/uuid"
	"github.com/ledgercore/txgateway"
	"go.uber.org/mock/gomock"
)

//
// MockUserStore
//

type MockUserStore struct {
	ctrl     *gomock.Controller
	recorder *MockUserStoreMockRecorder
}

type MockUserStoreMockRecorder struct {
	mock *MockUserStore
}

func NewMockUserStore(ctrl *gomock.Controller) *MockUserStore {
	mock := &MockUserStore{ctrl: ctrl}
	mock.recorder = &MockUserStoreMockRecorder{mock}
	return mock
}

func (m *MockUserStore) EXPECT() *MockUserStoreMockRecorder {
	return m.recorder
}

func (m *MockUserStore) Create(id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", id)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockUserStoreMockRecorder) Create(id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockUserStore)(nil).Create), id)
}

func (m *MockUserStore) Get(id string) (*txgateway.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", id)
	ret0, _ := ret[0].(*txgateway.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockUserStoreMockRecorder) Get(id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockUserStore)(nil).Get), id)
}

func (m *MockUserStore) Update(id string, balances map[string]int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", id, balances)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockUserStoreMockRecorder) Update(id, balances interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockUserStore)(nil).Update), id, balances)
}

//
// MockTransactionLog
//

type MockTransactionLog struct {
	ctrl     *gomock.Controller
	recorder *MockTransactionLogMockRecorder
}

type MockTransactionLogMockRecorder struct {
	mock *MockTransactionLog
}

func NewMockTransactionLog(ctrl *gomock.Controller) *MockTransactionLog {
	mock := &MockTransactionLog{ctrl: ctrl}
	mock.recorder = &MockTransactionLogMockRecorder{mock}
	return mock
}

func (m *MockTransactionLog) EXPECT() *MockTransactionLogMockRecorder {
	return m.recorder
}

func (m *MockTransactionLog) Create(tx *txgateway.Transaction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", tx)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockTransactionLogMockRecorder) Create(tx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockTransactionLog)(nil).Create), tx)
}

func (m *MockTransactionLog) Get(id uuid.UUID) (*txgateway.Transaction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", id)
	ret0, _ := ret[0].(*txgateway.Transaction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockTransactionLogMockRecorder) Get(id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockTransactionLog)(nil).Get), id)
}

func (m *MockTransactionLog) Update(id uuid.UUID, patch txgateway.TxPatch) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", id, patch)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockTransactionLogMockRecorder) Update(id, patch interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockTransactionLog)(nil).Update), id, patch)
}

func (m *MockTransactionLog) ForUser(username string) []uuid.UUID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ForUser", username)
	ret0, _ := ret[0].([]uuid.UUID)
	return ret0
}

func (mr *MockTransactionLogMockRecorder) ForUser(username interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ForUser", reflect.TypeOf((*MockTransactionLog)(nil).ForUser), username)
}

//
// MockService
//

type MockService struct {
	ctrl     *gomock.Controller
	recorder *MockServiceMockRecorder
}

type MockServiceMockRecorder struct {
	mock *MockService
}

func NewMockService(ctrl *gomock.Controller) *MockService {
	mock := &MockService{ctrl: ctrl}
	mock.recorder = &MockServiceMockRecorder{mock}
	return mock
}

func (m *MockService) EXPECT() *MockServiceMockRecorder {
	return m.recorder
}

func (m *MockService) CreateUser(req txgateway.CreateUserReq) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateUser", req)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockServiceMockRecorder) CreateUser(req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateUser", reflect.TypeOf((*MockService)(nil).CreateUser), req)
}

func (m *MockService) Deposit(req txgateway.ChargeReq) (float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Deposit", req)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockServiceMockRecorder) Deposit(req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Deposit", reflect.TypeOf((*MockService)(nil).Deposit), req)
}

func (m *MockService) Withdraw(req txgateway.ChargeReq) (float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Withdraw", req)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockServiceMockRecorder) Withdraw(req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Withdraw", reflect.TypeOf((*MockService)(nil).Withdraw), req)
}

func (m *MockService) Send(req txgateway.SendReq) (float64, float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", req)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(float64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

func (mr *MockServiceMockRecorder) Send(req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockService)(nil).Send), req)
}

func (m *MockService) Balance(req txgateway.BalanceReq) (float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Balance", req)
	ret0, _ := ret[0].(float64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockServiceMockRecorder) Balance(req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Balance", reflect.TypeOf((*MockService)(nil).Balance), req)
}

func (m *MockService) Statement(w io.Writer, req txgateway.StatementReq) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Statement", w, req)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockServiceMockRecorder) Statement(w, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Statement", reflect.TypeOf((*MockService)(nil).Statement), w, req)
}

var (
	_ txgateway.UserStore      = (*MockUserStore)(nil)
	_ txgateway.TransactionLog = (*MockTransactionLog)(nil)
	_ txgateway.Service        = (*MockService)(nil)
)
