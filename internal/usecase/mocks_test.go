package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase/oplog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders         repo.OrderRepository
	orderDetails   repo.OrderDetailRepository
	lockedDates    repo.LockedDateRepository
	administrators repo.AdministratorRepository
	operationLogs  repo.OperationLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository                 { return r.orders }
func (r *TxReposMock) OrderDetails() repo.OrderDetailRepository     { return r.orderDetails }
func (r *TxReposMock) LockedDates() repo.LockedDateRepository       { return r.lockedDates }
func (r *TxReposMock) Administrators() repo.AdministratorRepository { return r.administrators }
func (r *TxReposMock) OperationLogs() repo.OperationLogRepository   { return r.operationLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type OrderDetailRepoMock struct{ mock.Mock }

func (m *OrderDetailRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	ds, _ := args.Get(0).([]model.OrderDetail)
	return ds, args.Error(1)
}

func (m *OrderDetailRepoMock) FindByID(ctx context.Context, orderID int64, detailID int64) (model.OrderDetail, error) {
	args := m.Called(ctx, orderID, detailID)
	d, _ := args.Get(0).(model.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderDetailRepoMock) Update(ctx context.Context, d model.OrderDetail) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

type LockedDateRepoMock struct{ mock.Mock }

func (m *LockedDateRepoMock) Create(ctx context.Context, date time.Time) (model.LockedDate, error) {
	args := m.Called(ctx, date)
	ld, _ := args.Get(0).(model.LockedDate)
	return ld, args.Error(1)
}

func (m *LockedDateRepoMock) FindByID(ctx context.Context, id int64) (model.LockedDate, error) {
	args := m.Called(ctx, id)
	ld, _ := args.Get(0).(model.LockedDate)
	return ld, args.Error(1)
}

func (m *LockedDateRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AdministratorRepoMock struct{ mock.Mock }

func (m *AdministratorRepoMock) FindByID(ctx context.Context, id int64) (model.Administrator, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.Administrator)
	return a, args.Error(1)
}

func (m *AdministratorRepoMock) Update(ctx context.Context, a model.Administrator) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type OperationLogRepoMock struct{ mock.Mock }

func (m *OperationLogRepoMock) Create(ctx context.Context, log *model.OperationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// =====================
// OperationLogger mock
// =====================

type OperationLoggerMock struct{ mock.Mock }

func (m *OperationLoggerMock) LogOperation(ctx context.Context, op oplog.Operation) bool {
	args := m.Called(ctx, op)
	return args.Bool(0)
}

func (m *OperationLoggerMock) LogOperationTx(ctx context.Context, logs repo.OperationLogRepository, op oplog.Operation) bool {
	args := m.Called(ctx, logs, op)
	return args.Bool(0)
}

// =====================
// Password mocks
// =====================

type HasherMock struct{ mock.Mock }

func (m *HasherMock) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

type VerifierMock struct{ mock.Mock }

func (m *VerifierMock) Verify(plain string, hashed string) bool {
	args := m.Called(plain, hashed)
	return args.Bool(0)
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func ptr[T any](v T) *T { return &v }
