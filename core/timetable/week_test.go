package timetable

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewWeekRecord(t *testing.T) {
	rec := NewWeekRecord(44)
	if rec.Week != 44 {
		t.Fatalf("week %d", rec.Week)
	}
	for i, d := range rec.Days {
		if d != EmptyDay {
			t.Fatalf("day %d not empty: %q", i, d)
		}
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestWeekRecordValidate(t *testing.T) {
	rec := NewWeekRecord(0)
	if rec.Validate() == nil {
		t.Fatalf("expected week range error")
	}
	rec = NewWeekRecord(10)
	rec.Days[3] = "123"
	if rec.Validate() == nil {
		t.Fatalf("expected malformed day error")
	}
}

func TestWeekRecordJSONShape(t *testing.T) {
	rec := NewWeekRecord(45)
	rec.Days[2] = DayCode("000000000000000111200000")
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"week":45,"days":["0000`) {
		t.Fatalf("unexpected json %s", b)
	}
	var back WeekRecord
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != rec {
		t.Fatalf("round trip mismatch %#v", back)
	}
}

func TestTimetable(t *testing.T) {
	rec := NewWeekRecord(1)
	rec.Days[0] = DayCode("111111111111111111111111")
	got := rec.Timetable()
	parts := strings.Split(got, ";")
	if len(parts) != 7 || parts[0] != string(rec.Days[0]) || parts[6] != string(EmptyDay) {
		t.Fatalf("bad timetable %s", got)
	}
	if rec.Join("%3B") != strings.Join(parts, "%3B") {
		t.Fatalf("join mismatch")
	}
}

func TestWeekdayIndexAndISOWeek(t *testing.T) {
	// 2025-11-03 is a Monday in ISO week 45.
	mon := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := mon.AddDate(0, 0, i)
		if WeekdayIndex(d) != i {
			t.Fatalf("%s: index %d want %d", d.Weekday(), WeekdayIndex(d), i)
		}
		if ISOWeek(d) != 45 {
			t.Fatalf("%s: week %d", d, ISOWeek(d))
		}
	}
	if ISOWeek(mon.AddDate(0, 0, 7)) != 46 {
		t.Fatalf("expected next week")
	}
}

func TestSummarize(t *testing.T) {
	rec := NewWeekRecord(3)
	rec.Days[1] = code(map[int]byte{1: '1', 2: '1', 3: '2'})
	rec.Days[4] = code(map[int]byte{10: '3'})
	s := Summarize(rec)
	if s.TotalHours != 3.0 {
		t.Fatalf("total %v", s.TotalHours)
	}
	if s.PerDay[1] != 2.5 || s.PerDay[4] != 0.5 {
		t.Fatalf("per day %v", s.PerDay)
	}
	if s.WorstDay != "Tue" {
		t.Fatalf("worst %s", s.WorstDay)
	}
	if s.MeanHours <= 0 || s.StdDev <= 0 {
		t.Fatalf("stats %v %v", s.MeanHours, s.StdDev)
	}
	if Summarize(NewWeekRecord(3)).WorstDay != "" {
		t.Fatalf("empty week has no worst day")
	}
}
