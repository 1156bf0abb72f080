package events

import "time"

// Event is any value published on the sync event bus.
type Event interface {
	PassID() string
}

// Day outcomes reported by DayProcessed.
const (
	OutcomeChanged     = "changed"
	OutcomeUnchanged   = "unchanged"
	OutcomeUnavailable = "unavailable"
)

// PassStarted is published when a pass begins.
type PassStarted struct {
	ID   string
	Week int
	Time time.Time
}

func (e PassStarted) PassID() string { return e.ID }

// DayProcessed is published for each day handled during a pass.
type DayProcessed struct {
	ID          string
	Label       string
	Date        time.Time
	Weekday     int
	Outcome     string
	OutageHours float64
	Skipped     int
	Err         error
}

func (e DayProcessed) PassID() string { return e.ID }

// PassFinished is published when a pass ends.
type PassFinished struct {
	ID        string
	Week      int
	Dirty     bool
	Persisted bool
	Published bool
	Mirrored  int
	Err       error
	Duration  time.Duration
	Time      time.Time
}

func (e PassFinished) PassID() string { return e.ID }

// Status summarises the pass for labels: "noop", "published",
// "persist_failed" or "publish_failed".
func (e PassFinished) Status() string {
	switch {
	case !e.Dirty:
		return "noop"
	case !e.Persisted:
		return "persist_failed"
	case !e.Published:
		return "publish_failed"
	default:
		return "published"
	}
}
