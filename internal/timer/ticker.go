package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Option configures the ticker.
type Option func(*Ticker)

// WithTickInterval sets the wall-clock period between ticks. Each tick
// still counts as one second of timer time.
func WithTickInterval(d time.Duration) Option {
	return func(t *Ticker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// Ticker is the periodic tick source for timer registries. It only
// produces ticks; whoever owns the registry consumes C and calls Tick on
// its own goroutine.
type Ticker struct {
	log      *logger.Logger
	interval time.Duration
	ch       chan time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewTicker creates a ticker with a one second default interval.
func NewTicker(log *logger.Logger, opts ...Option) *Ticker {
	t := &Ticker{
		log:      log,
		interval: time.Second,
		ch:       make(chan time.Time, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// C returns the tick channel. A slow consumer drops ticks rather than
// queueing them.
func (t *Ticker) C() <-chan time.Time { return t.ch }

// Interval returns the configured tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Start begins emitting ticks. Non-blocking.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.log.Warn("ticker already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true

	go t.loop(childCtx)
	t.log.Info("ticker started (interval=%s)", t.interval)
}

// Stop halts tick production.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.cancel()
	t.running = false
	t.log.Info("ticker stopped")
}

func (t *Ticker) loop(ctx context.Context) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C:
			select {
			case t.ch <- now:
			default:
				t.log.Debug("ticker: consumer busy, tick dropped")
			}
		}
	}
}
