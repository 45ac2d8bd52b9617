package oplog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"erp/internal/domain/diff"
	"erp/internal/domain/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 注文ログをまとめる時間の設定。大小関係だけが意味を持つ。
type CoalescerConfig struct {
	// 1件あたりの待ち時間。件数に比例して伸びる
	WindowMin time.Duration
	// 待ち時間の上限
	WindowMax time.Duration
	// これだけ投入がなければ sweep で強制 flush
	StaleAfter time.Duration
	// flush 直後に同じ注文への投入を捨てる時間
	Cooldown time.Duration
}

func DefaultCoalescerConfig() CoalescerConfig {
	return CoalescerConfig{
		WindowMin:  500 * time.Millisecond,
		WindowMax:  2 * time.Second,
		StaleAfter: 10 * time.Second,
		Cooldown:   500 * time.Millisecond,
	}
}

func (c CoalescerConfig) Validate() error {
	if c.Cooldown <= 0 {
		return errors.New("cooldown must be positive")
	}
	if c.WindowMin < c.Cooldown {
		return errors.New("window min must not be shorter than cooldown")
	}
	if c.WindowMax < c.WindowMin {
		return errors.New("window max must not be shorter than window min")
	}
	if c.WindowMax <= c.Cooldown {
		return errors.New("window max must be longer than cooldown")
	}
	if c.StaleAfter <= c.WindowMax {
		return errors.New("stale threshold must be longer than window max")
	}
	return nil
}

type submission struct {
	doc       *diff.OrderDiff
	kind      model.OperationKind
	subjectID int64
	actorID   *int64
	actorKind model.ActorKind
}

// 注文1件分のバッファ
type buffer struct {
	key   string
	cycle string

	merged *diff.OrderDiff
	subs   []submission

	started  time.Time
	lastAt   time.Time
	deadline time.Time
}

// 同じ注文の連続した更新を1行にまとめる。
// バッファの操作は mu の中だけで行い、書き込みは必ずロックの外。
type Coalescer struct {
	cfg    CoalescerConfig
	writer *Writer
	log    *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	buffers map[string]*buffer

	cooldownMu sync.Mutex
	cooldown   map[string]time.Time

	wake     chan struct{}
	done     chan struct{}
	inflight sync.WaitGroup
}

func NewCoalescer(cfg CoalescerConfig, writer *Writer, log *zap.Logger) *Coalescer {
	return &Coalescer{
		cfg:      cfg,
		writer:   writer,
		log:      log,
		now:      time.Now,
		buffers:  map[string]*buffer{},
		cooldown: map[string]time.Time{},
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// バッファのキー。注文番号は前後空白を落として大文字にそろえる。
func BufferKey(orderNumber string, subjectID int64) string {
	n := strings.ToUpper(strings.TrimSpace(orderNumber))
	if n == "" {
		n = "#" + strconv.FormatInt(subjectID, 10)
	}
	return string(model.SubjectOrders) + ":" + n
}

// Submit は注文の差分を受け付ける。作成・削除はまとめずにすぐ書く。
// クールダウン中に新しいバッファを作る投入や空の差分は false。
// 既にバッファがあればクールダウン中でもまとめる。
func (c *Coalescer) Submit(ctx context.Context, e Entry) bool {
	doc, ok := e.Document.(*diff.OrderDiff)
	if !ok || doc == nil || doc.Empty() {
		return false
	}
	if e.Kind != model.OperationUpdate && e.Kind != model.OperationAudit {
		return c.writer.Write(ctx, e)
	}

	key := BufferKey(doc.OrderNumber, e.SubjectID)
	now := c.now()

	sub := submission{
		doc:       doc.Clone(),
		kind:      e.Kind,
		subjectID: e.SubjectID,
		actorID:   e.ActorID,
		actorKind: e.ActorKind,
	}

	c.mu.Lock()
	b, exists := c.buffers[key]
	if !exists {
		if c.inCooldown(key, now) {
			c.mu.Unlock()
			c.log.Debug("drop order change during cooldown", zap.String("key", key))
			return false
		}
		b = &buffer{
			key:     key,
			cycle:   uuid.NewString(),
			merged:  doc.Clone(),
			started: now,
		}
		c.buffers[key] = b
	} else {
		b.merged.Merge(sub.doc)
	}
	b.subs = append(b.subs, sub)
	b.lastAt = now
	b.deadline = now.Add(c.delay(len(b.subs)))
	size := len(b.subs)
	cycle := b.cycle
	c.mu.Unlock()

	c.log.Debug("buffer order change",
		zap.String("key", key),
		zap.String("cycle", cycle),
		zap.Int("submissions", size),
	)
	c.notify()
	return true
}

// 件数が多いほど少し長く待つ。上限は WindowMax。
func (c *Coalescer) delay(n int) time.Duration {
	d := c.cfg.WindowMin * time.Duration(n)
	if d > c.cfg.WindowMax {
		d = c.cfg.WindowMax
	}
	return d
}

func (c *Coalescer) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run は期限が来たバッファを flush し続ける。ctx が終わるまで戻らない。
// 1つの Coalescer につき1回だけ呼ぶ。
func (c *Coalescer) Run(ctx context.Context) {
	defer close(c.done)
	for {
		var fire <-chan time.Time
		var timer *time.Timer
		if next, ok := c.nextDeadline(); ok {
			timer = time.NewTimer(max(next.Sub(c.now()), 0))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-c.wake:
		case <-fire:
			for _, b := range c.take(c.isDue) {
				c.inflight.Add(1)
				go func(b *buffer) {
					defer c.inflight.Done()
					c.flush(context.WithoutCancel(ctx), b)
				}(b)
			}
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// Done は Run が戻ると閉じる。以後 Run から書き込みは始まらない。
func (c *Coalescer) Done() <-chan struct{} {
	return c.done
}

// FlushDue は期限切れのバッファをこの goroutine で書く
func (c *Coalescer) FlushDue(ctx context.Context) int {
	return c.flushAll(ctx, c.take(c.isDue))
}

// FlushStale は StaleAfter 以上投入のないバッファを書く（定期 sweep 用）
func (c *Coalescer) FlushStale(ctx context.Context) int {
	c.pruneCooldown(c.now())
	return c.flushAll(ctx, c.take(c.isStale))
}

// Close は残っているバッファをすべて書き、書き込み中のものを待つ。
// Run を動かしているなら Done を待ってから呼ぶ。
func (c *Coalescer) Close(ctx context.Context) int {
	n := c.flushAll(ctx, c.take(func(*buffer, time.Time) bool { return true }))
	c.inflight.Wait()
	return n
}

// 保留中のバッファ数
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}

func (c *Coalescer) isDue(b *buffer, now time.Time) bool {
	return !now.Before(b.deadline)
}

func (c *Coalescer) isStale(b *buffer, now time.Time) bool {
	return now.Sub(b.lastAt) >= c.cfg.StaleAfter
}

func (c *Coalescer) nextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var next time.Time
	for _, b := range c.buffers {
		if next.IsZero() || b.deadline.Before(next) {
			next = b.deadline
		}
	}
	return next, !next.IsZero()
}

// 書く前にマップから外す。以後の投入は新しいバッファになる。
func (c *Coalescer) take(pick func(*buffer, time.Time) bool) []*buffer {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*buffer
	for key, b := range c.buffers {
		if pick(b, now) {
			delete(c.buffers, key)
			out = append(out, b)
		}
	}
	return out
}

func (c *Coalescer) flushAll(ctx context.Context, bs []*buffer) int {
	written := 0
	for _, b := range bs {
		if c.flush(ctx, b) {
			written++
		}
	}
	return written
}

func (c *Coalescer) flush(ctx context.Context, b *buffer) bool {
	defer c.markCooldown(b.key)

	fields := []zap.Field{
		zap.String("key", b.key),
		zap.String("cycle", b.cycle),
		zap.Int("submissions", len(b.subs)),
	}
	if len(b.subs) == 0 {
		return false
	}
	if b.merged.Empty() {
		c.log.Debug("order changes cancelled out", fields...)
		return false
	}

	last := b.subs[len(b.subs)-1]
	kind := model.OperationUpdate
	for _, s := range b.subs {
		if s.kind == model.OperationAudit {
			kind = model.OperationAudit
			break
		}
	}

	if c.writer.Write(ctx, Entry{
		Table:     model.SubjectOrders,
		Kind:      kind,
		SubjectID: last.subjectID,
		Document:  b.merged,
		ActorID:   last.actorID,
		ActorKind: last.actorKind,
	}) {
		c.log.Debug("flush order changes", fields...)
		return true
	}

	if len(b.subs) == 1 {
		return false
	}
	// まとめた分が書けなければ最後の1件だけでも残す
	c.log.Warn("merged order log failed, writing latest submission", fields...)
	return c.writer.Write(ctx, Entry{
		Table:     model.SubjectOrders,
		Kind:      last.kind,
		SubjectID: last.subjectID,
		Document:  last.doc,
		ActorID:   last.actorID,
		ActorKind: last.actorKind,
	})
}

func (c *Coalescer) markCooldown(key string) {
	c.cooldownMu.Lock()
	defer c.cooldownMu.Unlock()
	c.cooldown[key] = c.now().Add(c.cfg.Cooldown)
}

func (c *Coalescer) inCooldown(key string, now time.Time) bool {
	c.cooldownMu.Lock()
	defer c.cooldownMu.Unlock()
	until, ok := c.cooldown[key]
	if !ok {
		return false
	}
	if now.Before(until) {
		return true
	}
	delete(c.cooldown, key)
	return false
}

func (c *Coalescer) pruneCooldown(now time.Time) {
	c.cooldownMu.Lock()
	defer c.cooldownMu.Unlock()
	for key, until := range c.cooldown {
		if !now.Before(until) {
			delete(c.cooldown, key)
		}
	}
}
