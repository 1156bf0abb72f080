package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kilianp07/svitlosync/core/logger"
	"github.com/kilianp07/svitlosync/core/monitoring"
	"github.com/kilianp07/svitlosync/core/timetable"
)

// WeeklyStore is the sole reader and writer of persisted week state.
type WeeklyStore struct {
	backend Backend
	log     logger.Logger
	mon     monitoring.Monitor
}

// NewWeeklyStore wraps backend. A nil monitor disables error reporting.
func NewWeeklyStore(backend Backend, log logger.Logger, mon monitoring.Monitor) *WeeklyStore {
	if mon == nil {
		mon = monitoring.NopMonitor{}
	}
	return &WeeklyStore{backend: backend, log: log, mon: mon}
}

// Load returns the record for week. A missing, corrupt or unreadable record
// yields a fresh all-clear record; the anomaly is logged, never returned.
func (s *WeeklyStore) Load(ctx context.Context, week int) timetable.WeekRecord {
	rec, err := s.backend.Get(ctx, week)
	switch {
	case err == nil:
		if verr := rec.Validate(); verr != nil {
			err = fmt.Errorf("%w: %v", ErrCorrupt, verr)
		} else if rec.Week != week {
			err = fmt.Errorf("%w: stored week %d under key %d", ErrCorrupt, rec.Week, week)
		} else {
			return rec
		}
	case errors.Is(err, ErrNotFound):
		s.log.Infof("no stored record for week %d, starting empty", week)
		return timetable.NewWeekRecord(week)
	}
	s.log.Errorf("load week %d: %v; starting empty", week, err)
	s.mon.CaptureException(err, map[string]string{"stage": "load", "week": strconv.Itoa(week)})
	return timetable.NewWeekRecord(week)
}

// Save persists rec. Failures wrap ErrPersist and are also reported to the
// monitor; the caller decides what to skip.
func (s *WeeklyStore) Save(ctx context.Context, rec timetable.WeekRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.backend.Put(ctx, rec); err != nil {
		err = fmt.Errorf("%w: week %d: %v", ErrPersist, rec.Week, err)
		s.mon.CaptureException(err, map[string]string{"stage": "save", "week": strconv.Itoa(rec.Week)})
		return err
	}
	s.log.Debugf("saved week %d", rec.Week)
	return nil
}

// Close releases the backend.
func (s *WeeklyStore) Close() error { return s.backend.Close() }
