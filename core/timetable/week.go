package timetable

import (
	"fmt"
	"strings"
	"time"
)

// DaysPerWeek is the number of DayCodes in a WeekRecord.
const DaysPerWeek = 7

// TimetableSeparator joins day codes in the published timetable. It is
// percent-encoded as %3B on the wire.
const TimetableSeparator = ";"

// DayNames are short labels indexed Monday first.
var DayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekRecord is the persisted state of one ISO week: one DayCode per weekday,
// Monday at index 0.
type WeekRecord struct {
	Week int                  `json:"week"`
	Days [DaysPerWeek]DayCode `json:"days"`
}

// NewWeekRecord returns a record for week with no outages.
func NewWeekRecord(week int) WeekRecord {
	rec := WeekRecord{Week: week}
	for i := range rec.Days {
		rec.Days[i] = EmptyDay
	}
	return rec
}

// Validate checks the week number and every day code.
func (r WeekRecord) Validate() error {
	if r.Week < 1 || r.Week > 53 {
		return fmt.Errorf("week %d out of range", r.Week)
	}
	for i, d := range r.Days {
		if !d.Valid() {
			return fmt.Errorf("day %d: malformed code %q", i, d)
		}
	}
	return nil
}

// Join concatenates the seven day codes with sep.
func (r WeekRecord) Join(sep string) string {
	parts := make([]string, len(r.Days))
	for i, d := range r.Days {
		parts[i] = string(d)
	}
	return strings.Join(parts, sep)
}

// Timetable is the payload expected by the publisher.
func (r WeekRecord) Timetable() string { return r.Join(TimetableSeparator) }

// ISOWeek returns the ISO 8601 week number of t.
func ISOWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

// WeekdayIndex maps t to 0 for Monday through 6 for Sunday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % DaysPerWeek
}
