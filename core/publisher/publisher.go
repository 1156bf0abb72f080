// Package publisher defines the downstream timetable targets.
package publisher

import (
	"context"
	"errors"
	"sync"

	"github.com/kilianp07/svitlosync/core/timetable"
)

var (
	// ErrRejected is returned when the endpoint answers with a non-2xx status.
	ErrRejected = errors.New("timetable rejected")
	// ErrUnreachable is returned on transport failures and timeouts.
	ErrUnreachable = errors.New("publisher unreachable")
)

// Publisher submits the seven joined day codes to the downstream endpoint.
type Publisher interface {
	Publish(ctx context.Context, timetableData string) error
}

// Mirror receives a copy of every successfully published record. Mirrors are
// best effort.
type Mirror interface {
	Mirror(ctx context.Context, rec timetable.WeekRecord) error
	Close() error
}

// RecordingPublisher keeps every payload it is given. Err, when set, is
// returned instead of recording.
type RecordingPublisher struct {
	mu       sync.Mutex
	Payloads []string
	Err      error
}

func (r *RecordingPublisher) Publish(_ context.Context, data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Payloads = append(r.Payloads, data)
	return nil
}

// Count returns the number of recorded payloads.
func (r *RecordingPublisher) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Payloads)
}
