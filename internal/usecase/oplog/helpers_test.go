package oplog

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"erp/internal/domain/model"
	infraRepo "erp/internal/infra/repository"
	repo "erp/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// テストごとに独立したインメモリDB
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.OperationLog{}))
	return db
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// sqlite に書く Writer と Coalescer
func newTestCoalescer(t *testing.T, clk *fakeClock) (*Coalescer, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	w := NewWriter(newGormLogs(db), zap.NewNop())
	w.now = clk.Now
	c := NewCoalescer(DefaultCoalescerConfig(), w, zap.NewNop())
	c.now = clk.Now
	return c, db
}

func newGormLogs(db *gorm.DB) repo.OperationLogRepository {
	return infraRepo.NewOperationLogGormRepository(db)
}

func loadLogs(t *testing.T, db *gorm.DB) []model.OperationLog {
	t.Helper()
	var logs []model.OperationLog
	require.NoError(t, db.Order("id asc").Find(&logs).Error)
	return logs
}

// diff_document の message 部分
func message(t *testing.T, l model.OperationLog) map[string]any {
	t.Helper()
	var doc struct {
		Message map[string]any `json:"message"`
	}
	require.NoError(t, json.Unmarshal(l.DiffDocument, &doc))
	return doc.Message
}

type OperationLogRepoMock struct{ mock.Mock }

func (m *OperationLogRepoMock) Create(ctx context.Context, log *model.OperationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
