package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"erp/internal/domain/diff"
	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase/oplog"
)

// 出荷不可日のロック/解除。ログは同じTxの中で書く。
type LockedDateUsecase struct {
	tx   repo.TransactionManager
	logs OperationLogger
}

func NewLockedDateUsecase(tx repo.TransactionManager, logs OperationLogger) *LockedDateUsecase {
	return &LockedDateUsecase{tx: tx, logs: logs}
}

type LockedDateOutput struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
}

func (u *LockedDateUsecase) Lock(ctx context.Context, actor Actor, date string) (LockedDateOutput, error) {
	if !actor.valid() {
		return LockedDateOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	d, err := time.Parse(diff.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return LockedDateOutput{}, NewHTTPError(http.StatusBadRequest, "invalid date")
	}

	var out LockedDateOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ld, err := r.LockedDates().Create(ctx, d)
		if errors.Is(err, repo.ErrDuplicate) {
			return NewHTTPError(http.StatusConflict, "date already locked")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		u.logs.LogOperationTx(ctx, r.OperationLogs(), oplog.Operation{
			Table:     model.SubjectProducts,
			Kind:      model.OperationLockDate,
			SubjectID: ld.ID,
			New:       lockedDateSnapshot(ld),
			ActorID:   actor.id(),
			ActorKind: actor.Kind,
		})
		out = LockedDateOutput{ID: ld.ID, Date: ld.Date.Format(diff.DateLayout)}
		return nil
	})
	if err != nil {
		return LockedDateOutput{}, err
	}
	return out, nil
}

func (u *LockedDateUsecase) Unlock(ctx context.Context, actor Actor, id int64) error {
	if !actor.valid() {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ld, err := r.LockedDates().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.LockedDates().Delete(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		u.logs.LogOperationTx(ctx, r.OperationLogs(), oplog.Operation{
			Table:     model.SubjectProducts,
			Kind:      model.OperationUnlockDate,
			SubjectID: ld.ID,
			Old:       lockedDateSnapshot(ld),
			ActorID:   actor.id(),
			ActorKind: actor.Kind,
		})
		return nil
	})
}
