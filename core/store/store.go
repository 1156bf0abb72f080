// Package store keeps the durable WeekRecord state. Backends are plain
// key-value stores keyed by ISO week number; WeeklyStore layers the
// load-or-create and report-don't-raise semantics on top.
package store

import (
	"context"
	"errors"

	"github.com/kilianp07/svitlosync/core/timetable"
)

var (
	// ErrNotFound is returned by a Backend when no record exists for the week.
	ErrNotFound = errors.New("week record not found")
	// ErrCorrupt marks a stored record that cannot be decoded or validated.
	ErrCorrupt = errors.New("week record corrupt")
	// ErrPersist wraps every failure to durably save a record.
	ErrPersist = errors.New("persist week record")
)

// Backend persists WeekRecords keyed by week number. Put must be atomic with
// respect to Get: a reader never observes a partially written record.
type Backend interface {
	Get(ctx context.Context, week int) (timetable.WeekRecord, error)
	Put(ctx context.Context, rec timetable.WeekRecord) error
	Close() error
}
