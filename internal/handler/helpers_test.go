package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"erp/internal/config"
	"erp/internal/domain/diff"
	"erp/internal/domain/model"
	"erp/internal/handler"
	infraRepo "erp/internal/infra/repository"
	"erp/internal/usecase/oplog"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testCfg = config.Config{JWTSecret: "test-secret"}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewCustomValidator()
	return e
}

func newTestDB(t *testing.T) *gorm.DB {
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

// 注文は Coalescer を通さずその場で書く
func newLogService(db *gorm.DB) *oplog.Service {
	writer := oplog.NewWriter(infraRepo.NewOperationLogGormRepository(db), zap.NewNop())
	return oplog.NewService(diff.NewRegistry(), writer, nil, zap.NewNop())
}

func mustToken(t *testing.T, sub int64, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  9999999999,
	}).SignedString([]byte(testCfg.JWTSecret))
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, e *echo.Echo, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var r handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r.Error
}

func loadLogs(t *testing.T, db *gorm.DB) []model.OperationLog {
	t.Helper()
	var logs []model.OperationLog
	require.NoError(t, db.Order("id asc").Find(&logs).Error)
	return logs
}

func statusOK(code int) bool { return code >= http.StatusOK && code < http.StatusMultipleChoices }
