package timetable

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the outage hours of a WeekRecord.
type Summary struct {
	Week       int                  `json:"week"`
	PerDay     [DaysPerWeek]float64 `json:"per_day_hours"`
	TotalHours float64              `json:"total_hours"`
	MeanHours  float64              `json:"mean_hours"`
	StdDev     float64              `json:"std_dev_hours"`
	WorstDay   string               `json:"worst_day,omitempty"`
}

// Summarize computes per-day and weekly outage statistics.
func Summarize(r WeekRecord) Summary {
	s := Summary{Week: r.Week}
	hours := make([]float64, DaysPerWeek)
	for i, d := range r.Days {
		hours[i] = d.OutageHours()
		s.PerDay[i] = hours[i]
	}
	s.TotalHours = floats.Sum(hours)
	s.MeanHours, s.StdDev = stat.MeanStdDev(hours, nil)
	if s.TotalHours > 0 {
		s.WorstDay = DayNames[floats.MaxIdx(hours)]
	}
	return s
}
