package syncer

import (
	"context"
	"time"

	"github.com/kilianp07/svitlosync/core/logger"
	"github.com/kilianp07/svitlosync/core/monitoring"
)

// Passer runs one synchronisation pass.
type Passer interface {
	Sync(ctx context.Context) PassResult
}

// Loop runs passes strictly one after another: the first immediately, then
// one per interval until the context is cancelled.
type Loop struct {
	passer    Passer
	interval  time.Duration
	log       logger.Logger
	mon       monitoring.Monitor
	maxPasses int
}

// LoopOption customises a Loop.
type LoopOption func(*Loop)

// WithMaxPasses stops the loop after n passes. Zero means unbounded.
func WithMaxPasses(n int) LoopOption { return func(l *Loop) { l.maxPasses = n } }

// WithLoopMonitor reports recovered panics.
func WithLoopMonitor(m monitoring.Monitor) LoopOption { return func(l *Loop) { l.mon = m } }

// NewLoop creates a Loop. A non-positive interval defaults to five minutes.
func NewLoop(p Passer, interval time.Duration, log logger.Logger, opts ...LoopOption) *Loop {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	l := &Loop{passer: p, interval: interval, log: log, mon: monitoring.NopMonitor{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks until ctx is cancelled or the pass limit is reached. A pass in
// flight is never interrupted; cancellation is observed while sleeping.
func (l *Loop) Run(ctx context.Context) error {
	for n := 1; ; n++ {
		if ctx.Err() != nil {
			return nil
		}
		l.runPass(ctx)
		if l.maxPasses > 0 && n >= l.maxPasses {
			return nil
		}
		l.log.Debugf("next pass in %s", l.interval)
		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.log.Infof("poll loop stopped after %d passes", n)
			return nil
		case <-timer.C:
		}
	}
}

func (l *Loop) runPass(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			err := monitoring.PanicError(r)
			l.log.Errorf("sync pass panicked: %v", err)
			l.mon.CapturePanic(r, map[string]string{"stage": "pass"})
		}
	}()
	l.passer.Sync(context.WithoutCancel(ctx))
}
