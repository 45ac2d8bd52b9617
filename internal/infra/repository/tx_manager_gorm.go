package repository

import (
	"context"

	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders         repo.OrderRepository
	orderDetails   repo.OrderDetailRepository
	lockedDates    repo.LockedDateRepository
	administrators repo.AdministratorRepository
	operationLogs  repo.OperationLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) OrderDetails() repo.OrderDetailRepository     { return r.orderDetails }
func (r *txReposGorm) LockedDates() repo.LockedDateRepository       { return r.lockedDates }
func (r *txReposGorm) Administrators() repo.AdministratorRepository { return r.administrators }
func (r *txReposGorm) OperationLogs() repo.OperationLogRepository   { return r.operationLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:         NewOrderGormRepository(tx),
			orderDetails:   NewOrderDetailGormRepository(tx),
			lockedDates:    NewLockedDateGormRepository(tx),
			administrators: NewAdministratorGormRepository(tx),
			operationLogs:  NewOperationLogGormRepository(tx),
		}
		return fn(r)
	})
}
