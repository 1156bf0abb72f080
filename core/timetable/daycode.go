package timetable

import (
	"fmt"
	"strings"
)

// HoursPerDay is the fixed length of a DayCode.
const HoursPerDay = 24

// Hour states used in a DayCode.
const (
	PowerOn       byte = '0'
	PowerOff      byte = '1'
	FirstHalfOff  byte = '2'
	SecondHalfOff byte = '3'
)

// EmptyDay is a day without any planned outage.
var EmptyDay = DayCode(strings.Repeat(string(PowerOn), HoursPerDay))

// DayCode is the 24 character per-hour outage status of one calendar day.
// Index i describes hour i.
type DayCode string

// Valid reports whether the code has 24 characters from the 0-3 alphabet.
func (d DayCode) Valid() bool {
	if len(d) != HoursPerDay {
		return false
	}
	for i := 0; i < len(d); i++ {
		if d[i] < PowerOn || d[i] > SecondHalfOff {
			return false
		}
	}
	return true
}

// OutageHours returns the planned outage duration in hours.
func (d DayCode) OutageHours() float64 {
	var h float64
	for i := 0; i < len(d); i++ {
		switch d[i] {
		case PowerOff:
			h++
		case FirstHalfOff, SecondHalfOff:
			h += 0.5
		}
	}
	return h
}

// RawWindow is an outage window as delivered by the schedule provider.
type RawWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SkippedWindow describes a window ignored during encoding.
type SkippedWindow struct {
	Window RawWindow
	Err    error
}

func (s SkippedWindow) String() string {
	return fmt.Sprintf("%s-%s: %v", s.Window.From, s.Window.To, s.Err)
}

// EncodeDay converts outage windows into a DayCode. Unparseable windows are
// skipped.
func EncodeDay(windows []RawWindow) DayCode {
	code, _ := EncodeDayReport(windows)
	return code
}

// EncodeDayReport is EncodeDay that also returns the windows it skipped.
//
// Starts on a half hour flag the second half of that hour, ends on a half hour
// flag the first half of the end hour. Any other minute rounds the start up to
// the next full hour and the end up to a full extra hour. Windows only ever
// add outage: a position that is not PowerOn is never overwritten by a full
// hour.
func EncodeDayReport(windows []RawWindow) (DayCode, []SkippedWindow) {
	hours := []byte(EmptyDay)
	var skipped []SkippedWindow
	for _, w := range windows {
		if w.From == "" || w.To == "" {
			skipped = append(skipped, SkippedWindow{Window: w, Err: fmt.Errorf("%w: empty bound", ErrInvalidClock)})
			continue
		}
		from, err := ParseClock(w.From)
		if err != nil {
			skipped = append(skipped, SkippedWindow{Window: w, Err: err})
			continue
		}
		to, err := ParseClock(w.To)
		if err != nil {
			skipped = append(skipped, SkippedWindow{Window: w, Err: err})
			continue
		}

		start := from.Hour + 1
		switch from.Minute {
		case 0:
			start = from.Hour
		case 30:
			hours[from.Hour] = SecondHalfOff
		}

		end := to.Hour
		switch to.Minute {
		case 0:
			end = to.Hour - 1
		case 30:
			end = to.Hour - 1
			if end >= start {
				hours[to.Hour] = FirstHalfOff
			}
		}

		for h := start; h <= min(end, HoursPerDay-1); h++ {
			if hours[h] == PowerOn {
				hours[h] = PowerOff
			}
		}
	}
	return DayCode(hours), skipped
}
