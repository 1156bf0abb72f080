package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/svitlosync/infra/logger"
)

type funcPasser func(ctx context.Context) PassResult

func (f funcPasser) Sync(ctx context.Context) PassResult { return f(ctx) }

type panicMonitor struct{ panics atomic.Int32 }

func (m *panicMonitor) CaptureException(error, map[string]string) {}
func (m *panicMonitor) CapturePanic(any, map[string]string)      { m.panics.Add(1) }
func (m *panicMonitor) Flush(time.Duration)                      {}

func TestLoop_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var passes int
	p := funcPasser(func(ctx context.Context) PassResult {
		passes++
		if passes == 3 {
			cancel()
		}
		return PassResult{}
	})

	start := time.Now()
	err := NewLoop(p, 5*time.Millisecond, logger.NopLogger{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, passes)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLoop_FirstPassDoesNotWaitForInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := funcPasser(func(context.Context) PassResult {
		cancel()
		return PassResult{}
	})

	done := make(chan error, 1)
	go func() { done <- NewLoop(p, time.Hour, logger.NopLogger{}).Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoop_PassContextSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var passErr error
	p := funcPasser(func(pctx context.Context) PassResult {
		cancel()
		passErr = pctx.Err()
		return PassResult{}
	})
	require.NoError(t, NewLoop(p, time.Millisecond, logger.NopLogger{}).Run(ctx))
	assert.NoError(t, passErr)
}

func TestLoop_MaxPasses(t *testing.T) {
	var passes int
	p := funcPasser(func(context.Context) PassResult {
		passes++
		return PassResult{}
	})
	err := NewLoop(p, time.Millisecond, logger.NopLogger{}, WithMaxPasses(4)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, passes)
}

func TestLoop_RecoversPanic(t *testing.T) {
	mon := &panicMonitor{}
	var passes int
	p := funcPasser(func(context.Context) PassResult {
		passes++
		if passes == 1 {
			panic("boom")
		}
		return PassResult{}
	})
	err := NewLoop(p, time.Millisecond, logger.NopLogger{}, WithMaxPasses(2), WithLoopMonitor(mon)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, passes)
	assert.Equal(t, int32(1), mon.panics.Load())
}

func TestNewLoop_DefaultInterval(t *testing.T) {
	l := NewLoop(funcPasser(nil), 0, logger.NopLogger{})
	assert.Equal(t, 5*time.Minute, l.interval)
}
