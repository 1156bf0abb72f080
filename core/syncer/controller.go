package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/svitlosync/core/events"
	"github.com/kilianp07/svitlosync/core/logger"
	"github.com/kilianp07/svitlosync/core/monitoring"
	"github.com/kilianp07/svitlosync/core/publisher"
	"github.com/kilianp07/svitlosync/core/source"
	"github.com/kilianp07/svitlosync/core/timetable"
	"github.com/kilianp07/svitlosync/internal/eventbus"
)

// WeekStore is the subset of store.WeeklyStore used by the controller.
type WeekStore interface {
	Load(ctx context.Context, week int) timetable.WeekRecord
	Save(ctx context.Context, rec timetable.WeekRecord) error
}

// DayResult describes how one day was handled during a pass.
type DayResult struct {
	Label    string                    `json:"label"`
	Date     string                    `json:"date"`
	Weekday  int                       `json:"weekday"`
	Outcome  string                    `json:"outcome"`
	Code     timetable.DayCode         `json:"code,omitempty"`
	Previous timetable.DayCode         `json:"previous,omitempty"`
	Skipped  []timetable.SkippedWindow `json:"-"`
	Err      error                     `json:"-"`
}

// PassResult is the outcome of one Sync call.
type PassResult struct {
	ID        string      `json:"id"`
	Started   time.Time   `json:"started"`
	Finished  time.Time   `json:"finished"`
	Week      int         `json:"week"`
	Days      []DayResult `json:"days"`
	Dirty     bool        `json:"dirty"`
	Persisted bool        `json:"persisted"`
	Published bool        `json:"published"`
	Mirrored  int         `json:"mirrored"`
	Err       error       `json:"-"`
}

// Controller runs synchronisation passes. It is not safe for concurrent Sync
// calls; the Loop serialises them.
type Controller struct {
	source  source.ScheduleSource
	store   WeekStore
	pub     publisher.Publisher
	mirrors []publisher.Mirror
	bus     *eventbus.Bus[events.Event]
	log     logger.Logger
	mon     monitoring.Monitor
	now     func() time.Time
	loc     *time.Location

	mu   sync.RWMutex
	last *PassResult
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithLocation sets the timezone used to decide what today is.
func WithLocation(loc *time.Location) Option { return func(c *Controller) { c.loc = loc } }

// WithEventBus publishes pass events on bus.
func WithEventBus(bus *eventbus.Bus[events.Event]) Option { return func(c *Controller) { c.bus = bus } }

// WithMirrors adds best-effort copies after each successful publish.
func WithMirrors(m ...publisher.Mirror) Option {
	return func(c *Controller) { c.mirrors = append(c.mirrors, m...) }
}

// WithMonitor reports failures to an error tracker.
func WithMonitor(m monitoring.Monitor) Option { return func(c *Controller) { c.mon = m } }

// NewController wires a controller. Source, store, publisher and logger are required.
func NewController(src source.ScheduleSource, st WeekStore, pub publisher.Publisher, log logger.Logger, opts ...Option) (*Controller, error) {
	if src == nil || st == nil || pub == nil || log == nil {
		return nil, errors.New("syncer: source, store, publisher and logger are required")
	}
	c := &Controller{
		source: src,
		store:  st,
		pub:    pub,
		log:    log,
		mon:    monitoring.NopMonitor{},
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LastPass returns the result of the most recent pass.
func (c *Controller) LastPass() (PassResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return PassResult{}, false
	}
	return *c.last, true
}

// Sync runs one pass. Failures are recorded in the result and logged; Sync
// itself never fails.
func (c *Controller) Sync(ctx context.Context) PassResult {
	now := c.now().In(c.loc)
	res := PassResult{ID: uuid.NewString(), Started: now, Week: timetable.ISOWeek(now)}
	c.emit(events.PassStarted{ID: res.ID, Week: res.Week, Time: now})
	c.log.Infow("sync pass started", map[string]any{"pass_id": res.ID, "week": res.Week})

	rec := c.store.Load(ctx, res.Week)
	today := timetable.WeekdayIndex(now)
	for offset, label := range []string{"today", "tomorrow"} {
		idx := (today + offset) % timetable.DaysPerWeek
		day := c.syncDay(ctx, res.ID, &rec, now.AddDate(0, 0, offset), idx, label)
		if day.Outcome == events.OutcomeChanged {
			res.Dirty = true
		}
		res.Days = append(res.Days, day)
	}

	if !res.Dirty {
		c.log.Infow("no timetable changes", map[string]any{"pass_id": res.ID})
		return c.finish(res)
	}

	rec.Week = timetable.ISOWeek(now)
	if err := c.store.Save(ctx, rec); err != nil {
		res.Err = err
		c.log.Errorf("pass %s: changes computed but not saved, skipping publish: %v", res.ID, err)
		return c.finish(res)
	}
	res.Persisted = true
	c.log.Infow("week saved", map[string]any{"pass_id": res.ID, "week": rec.Week})

	if err := c.pub.Publish(ctx, rec.Timetable()); err != nil {
		res.Err = err
		c.log.Errorf("pass %s: publish failed: %v", res.ID, err)
		c.mon.CaptureException(err, map[string]string{"stage": "publish", "week": strconv.Itoa(rec.Week)})
		return c.finish(res)
	}
	res.Published = true
	c.log.Infow("timetable published", map[string]any{"pass_id": res.ID, "week": rec.Week})

	res.Mirrored = c.mirror(ctx, res.ID, rec)
	return c.finish(res)
}

func (c *Controller) syncDay(ctx context.Context, passID string, rec *timetable.WeekRecord, date time.Time, idx int, label string) DayResult {
	day := DayResult{Label: label, Date: date.Format(time.DateOnly), Weekday: idx, Previous: rec.Days[idx]}
	fields := map[string]any{"pass_id": passID, "day": label, "weekday": timetable.DayNames[idx], "date": day.Date}

	windows, err := c.source.Fetch(ctx, date)
	if err != nil {
		day.Outcome = events.OutcomeUnavailable
		day.Err = err
		c.log.Warnf("schedule for %s (%s %s) unavailable: %v", label, timetable.DayNames[idx], day.Date, err)
		c.emit(events.DayProcessed{ID: passID, Label: label, Date: date, Weekday: idx, Outcome: day.Outcome, Err: err})
		return day
	}
	fields["windows"] = len(windows)

	code, skipped := timetable.EncodeDayReport(windows)
	day.Code = code
	day.Skipped = skipped
	for _, s := range skipped {
		c.log.Warnf("skipping window for %s: %s", label, s)
	}
	fields["code"] = string(code)
	fields["outage_hours"] = code.OutageHours()

	if rec.Days[idx] == code {
		day.Outcome = events.OutcomeUnchanged
	} else {
		rec.Days[idx] = code
		day.Outcome = events.OutcomeChanged
	}
	fields["outcome"] = day.Outcome
	c.log.Infow("day processed", fields)
	c.emit(events.DayProcessed{
		ID:          passID,
		Label:       label,
		Date:        date,
		Weekday:     idx,
		Outcome:     day.Outcome,
		OutageHours: code.OutageHours(),
		Skipped:     len(skipped),
	})
	return day
}

func (c *Controller) mirror(ctx context.Context, passID string, rec timetable.WeekRecord) int {
	ok := 0
	for i, m := range c.mirrors {
		if err := m.Mirror(ctx, rec); err != nil {
			err = fmt.Errorf("mirror %d: %w", i, err)
			c.log.Warnf("pass %s: %v", passID, err)
			c.mon.CaptureException(err, map[string]string{"stage": "mirror"})
			continue
		}
		ok++
	}
	return ok
}

func (c *Controller) finish(res PassResult) PassResult {
	res.Finished = c.now().In(c.loc)
	ev := events.PassFinished{
		ID:        res.ID,
		Week:      res.Week,
		Dirty:     res.Dirty,
		Persisted: res.Persisted,
		Published: res.Published,
		Mirrored:  res.Mirrored,
		Err:       res.Err,
		Duration:  res.Finished.Sub(res.Started),
		Time:      res.Finished,
	}
	c.emit(ev)
	c.log.Infow("sync pass finished", map[string]any{
		"pass_id":  res.ID,
		"status":   ev.Status(),
		"duration": ev.Duration.String(),
	})
	c.mu.Lock()
	c.last = &res
	c.mu.Unlock()
	return res
}

func (c *Controller) emit(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
