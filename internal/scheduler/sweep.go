package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 溜まったままのバッファを強制的に書き出す対象
type StaleFlusher interface {
	FlushStale(ctx context.Context) int
}

// Sweeper は一定間隔で FlushStale を呼ぶ。
type Sweeper struct {
	cron    *cron.Cron
	flusher StaleFlusher
	log     *zap.Logger
}

func NewSweeper(flusher StaleFlusher, every time.Duration, log *zap.Logger) *Sweeper {
	s := &Sweeper{
		// 前回の sweep が終わっていなければ今回は飛ばす
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		flusher: flusher,
		log:     log,
	}
	s.cron.Schedule(cron.Every(every), cron.FuncJob(s.Sweep))
	return s
}

func (s *Sweeper) Sweep() {
	if n := s.flusher.FlushStale(context.Background()); n > 0 {
		s.log.Info("flushed stale order log buffers", zap.Int("count", n))
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("operation log sweeper started")
}

// Stop は実行中の sweep が終わるまで待つ
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
