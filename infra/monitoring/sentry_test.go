package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/svitlosync/config"
	coremon "github.com/kilianp07/svitlosync/core/monitoring"
)

type eventSink struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (e *eventSink) beforeSend(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
	return nil
}

func newTestMonitor(t *testing.T) (*sentryMonitor, *eventSink) {
	t.Helper()
	sink := &eventSink{}
	mon, err := newSentryMonitor(sentry.ClientOptions{
		Dsn:        "https://public@example.com/1",
		BeforeSend: sink.beforeSend,
	})
	require.NoError(t, err)
	return mon, sink
}

func TestNewSentryMonitor_DisabledWithoutDSN(t *testing.T) {
	mon, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, mon)
}

func TestSentryMonitor_CaptureException(t *testing.T) {
	mon, sink := newTestMonitor(t)
	mon.CaptureException(errors.New("publish failed"), map[string]string{"stage": "publish"})
	mon.CaptureException(nil, nil)
	mon.Flush(time.Second)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "publish", sink.events[0].Tags["stage"])
}

func TestSentryMonitor_CapturePanic(t *testing.T) {
	mon, sink := newTestMonitor(t)
	assert.NotPanics(t, func() {
		mon.CapturePanic("boom", map[string]string{"stage": "pass"})
	})
	require.Len(t, sink.events, 1)
	assert.Equal(t, sentry.LevelFatal, sink.events[0].Level)
	assert.Equal(t, "pass", sink.events[0].Tags["stage"])
}
