package handler_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"erp/internal/domain/model"
	"erp/internal/handler"
	infraRepo "erp/internal/infra/repository"
	"erp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLockedDateServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	uc := usecase.NewLockedDateUsecase(infraRepo.NewTxManagerGorm(db), newLogService(db))
	e := newEcho()
	handler.NewLockedDateHandler(uc).RegisterRoutes(e, testCfg)
	return e, db
}

func TestLockedDateHandler_LockAndUnlock(t *testing.T) {
	e, db := newLockedDateServer(t)
	token := mustToken(t, 1, "ADMIN")

	rec := doJSON(t, e, http.MethodPost, "/admin/locked-dates", token, map[string]string{"date": "2024-12-25"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out usecase.LockedDateOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "2024-12-25", out.Date)

	rec = doJSON(t, e, http.MethodDelete, "/admin/locked-dates/"+strconv.FormatInt(out.ID, 10), token, nil)
	require.True(t, statusOK(rec.Code), rec.Body.String())

	logs := loadLogs(t, db)
	require.Len(t, logs, 2)
	assert.Equal(t, model.OperationLockDate, logs[0].OperationKind)
	assert.Equal(t, model.OperationUnlockDate, logs[1].OperationKind)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, int64(1), *logs[0].ActorID)
	require.NotNil(t, logs[0].ActorKind)
	assert.Equal(t, model.ActorAdmin, *logs[0].ActorKind)
}

func TestLockedDateHandler_Lock_Duplicate(t *testing.T) {
	e, db := newLockedDateServer(t)
	token := mustToken(t, 1, "ADMIN")

	rec := doJSON(t, e, http.MethodPost, "/admin/locked-dates", token, map[string]string{"date": "2024-12-25"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/admin/locked-dates", token, map[string]string{"date": "2024-12-25"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, loadLogs(t, db), 1)
}

func TestLockedDateHandler_Lock_InvalidDate(t *testing.T) {
	e, _ := newLockedDateServer(t)

	rec := doJSON(t, e, http.MethodPost, "/admin/locked-dates", mustToken(t, 1, "ADMIN"), map[string]string{"date": "25/12/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid date", decodeError(t, rec))

	rec = doJSON(t, e, http.MethodPost, "/admin/locked-dates", mustToken(t, 1, "ADMIN"), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLockedDateHandler_Unlock_NotFound(t *testing.T) {
	e, db := newLockedDateServer(t)

	rec := doJSON(t, e, http.MethodDelete, "/admin/locked-dates/404", mustToken(t, 1, "ADMIN"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, loadLogs(t, db))
}
