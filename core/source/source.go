// Package source defines how outage windows are obtained for a calendar day.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/svitlosync/core/timetable"
)

// ErrUnavailable marks a failed fetch: transport error, non-2xx status or an
// unparseable payload. It is distinct from an empty schedule.
var ErrUnavailable = errors.New("schedule source unavailable")

// ScheduleSource returns the raw outage windows of one day for the configured
// queue. An empty slice with a nil error means no known outages.
type ScheduleSource interface {
	Fetch(ctx context.Context, date time.Time) ([]timetable.RawWindow, error)
}

// StaticSource serves fixed windows keyed by date (YYYY-MM-DD). Dates listed in
// Unavailable fail with ErrUnavailable.
type StaticSource struct {
	Days        map[string][]timetable.RawWindow
	Unavailable map[string]bool
	Calls       int
}

// DateKey formats date as used by StaticSource.
func DateKey(date time.Time) string { return date.Format(time.DateOnly) }

func (s *StaticSource) Fetch(_ context.Context, date time.Time) ([]timetable.RawWindow, error) {
	s.Calls++
	key := DateKey(date)
	if s.Unavailable[key] {
		return nil, ErrUnavailable
	}
	w := s.Days[key]
	if w == nil {
		return []timetable.RawWindow{}, nil
	}
	return w, nil
}
