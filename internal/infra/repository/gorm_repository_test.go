package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Order{},
		&model.OrderDetail{},
		&model.LockedDate{},
		&model.Administrator{},
		&model.OperationLog{},
	))
	return db
}

func TestLockedDateGormRepository(t *testing.T) {
	db := newSQLiteDB(t)
	r := NewLockedDateGormRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)

	ld, err := r.Create(ctx, day)
	require.NoError(t, err)
	assert.NotZero(t, ld.ID)

	_, err = r.Create(ctx, day)
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	got, err := r.FindByID(ctx, ld.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-25", got.Date.Format("2006-01-02"))

	require.NoError(t, r.Delete(ctx, ld.ID))
	assert.ErrorIs(t, r.Delete(ctx, ld.ID), repo.ErrNotFound)

	_, err = r.FindByID(ctx, ld.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderDetailGormRepository_Update(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&model.OrderDetail{ID: 1, OrderID: 7, ProductID: 100, ProductName: "Rice", Quantity: 2, Status: model.OrderStatusPending}).Error)
	r := NewOrderDetailGormRepository(db)

	d, err := r.FindByID(ctx, 7, 1)
	require.NoError(t, err)
	d.Quantity = 5
	d.SupplierNote = "late"
	require.NoError(t, r.Update(ctx, d))

	ds, err := r.ListByOrderID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, int64(5), ds[0].Quantity)
	assert.Equal(t, "late", ds[0].SupplierNote)

	// 他の注文の明細としては見つからない
	_, err = r.FindByID(ctx, 8, 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	d.OrderID = 8
	assert.ErrorIs(t, r.Update(ctx, d), repo.ErrNotFound)
}

func TestOrderGormRepository_UpdateStatus(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&model.Order{ID: 7, OrderNumber: "ORD-1", CustomerID: 1, Status: model.OrderStatusPending}).Error)
	r := NewOrderGormRepository(db)

	require.NoError(t, r.UpdateStatus(ctx, 7, model.OrderStatusConfirmed))
	o, err := r.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, o.Status)

	assert.ErrorIs(t, r.UpdateStatus(ctx, 99, model.OrderStatusConfirmed), repo.ErrNotFound)
}

// ログの INSERT 失敗は savepoint までの巻き戻しで、外側の Tx は生きている
func TestOperationLogGormRepository_FailureInsideTx_KeepsOuterTx(t *testing.T) {
	db := newSQLiteDB(t)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_operation_logs", func(tx *gorm.DB) {
		if tx.Statement.Table == "operation_logs" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))
	ctx := context.Background()

	err := NewTxManagerGorm(db).WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.LockedDates().Create(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			return err
		}
		logErr := r.OperationLogs().Create(ctx, &model.OperationLog{
			SubjectTable:  model.SubjectProducts,
			OperationKind: model.OperationLockDate,
			SubjectID:     1,
			DiffDocument:  datatypes.JSON(`{"message":{}}`),
			CreatedAt:     time.Now(),
		})
		assert.Error(t, logErr)
		return nil
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&model.LockedDate{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	require.NoError(t, db.Model(&model.OperationLog{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}
