package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase/oplog"
)

type AdminAccountUsecase struct {
	tx       repo.TransactionManager
	logs     OperationLogger
	hasher   PasswordHasher
	verifier PasswordVerifier
}

func NewAdminAccountUsecase(tx repo.TransactionManager, logs OperationLogger, hasher PasswordHasher, verifier PasswordVerifier) *AdminAccountUsecase {
	return &AdminAccountUsecase{tx: tx, logs: logs, hasher: hasher, verifier: verifier}
}

// nil の項目は変更しない
type UpdateAdminInput struct {
	AdminName         *string
	StaffNo           *string
	PermissionLevelID *int64
	Password          *string
}

type AdminOutput struct {
	ID                int64  `json:"id"`
	AdminAccount      string `json:"admin_account"`
	AdminName         string `json:"admin_name"`
	StaffNo           string `json:"staff_no"`
	PermissionLevelID int64  `json:"permission_level_id"`
}

const minPasswordLen = 8

func (u *AdminAccountUsecase) UpdateAdmin(ctx context.Context, actor Actor, adminID int64, in UpdateAdminInput) (AdminOutput, error) {
	if !actor.valid() || actor.Kind != model.ActorAdmin {
		return AdminOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if adminID <= 0 {
		return AdminOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out AdminOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Administrators().FindByID(ctx, adminID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before := adminSnapshot(a, false)

		if in.AdminName != nil {
			name := strings.TrimSpace(*in.AdminName)
			if name == "" {
				return NewHTTPError(http.StatusBadRequest, "invalid admin_name")
			}
			a.AdminName = name
		}
		if in.StaffNo != nil {
			a.StaffNo = strings.TrimSpace(*in.StaffNo)
		}
		if in.PermissionLevelID != nil {
			if *in.PermissionLevelID <= 0 {
				return NewHTTPError(http.StatusBadRequest, "invalid permission_level_id")
			}
			a.PermissionLevelID = *in.PermissionLevelID
		}

		// 同じパスワードの再設定は変更扱いにしない
		passwordChanged := false
		if in.Password != nil {
			if len(*in.Password) < minPasswordLen {
				return NewHTTPError(http.StatusBadRequest, "password too short")
			}
			if !u.verifier.Verify(*in.Password, a.PasswordHash) {
				hashed, err := u.hasher.Hash(*in.Password)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "hash error")
				}
				a.PasswordHash = hashed
				passwordChanged = true
			}
		}

		if err := r.Administrators().Update(ctx, a); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		u.logs.LogOperationTx(ctx, r.OperationLogs(), oplog.Operation{
			Table:     model.SubjectAdministrators,
			Kind:      model.OperationUpdate,
			SubjectID: a.ID,
			Old:       before,
			New:       adminSnapshot(a, passwordChanged),
			ActorID:   actor.id(),
			ActorKind: actor.Kind,
		})

		out = AdminOutput{
			ID:                a.ID,
			AdminAccount:      a.AdminAccount,
			AdminName:         a.AdminName,
			StaffNo:           a.StaffNo,
			PermissionLevelID: a.PermissionLevelID,
		}
		return nil
	})
	if err != nil {
		return AdminOutput{}, err
	}
	return out, nil
}
