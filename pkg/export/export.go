// Package export renders stored week records for humans and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/svitlosync/core/timetable"
)

// WeekView is the JSON shape of an exported week.
type WeekView struct {
	Record    timetable.WeekRecord `json:"record"`
	Timetable string               `json:"timetable"`
	Summary   timetable.Summary    `json:"summary"`
}

// NewWeekView attaches the joined timetable and outage summary to rec.
func NewWeekView(rec timetable.WeekRecord) WeekView {
	return WeekView{Record: rec, Timetable: rec.Timetable(), Summary: timetable.Summarize(rec)}
}

// WriteJSON writes rec with its summary to w as indented JSON.
func WriteJSON(w io.Writer, rec timetable.WeekRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewWeekView(rec))
}

// WriteCSV writes one row per weekday, Monday first.
func WriteCSV(w io.Writer, rec timetable.WeekRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"week", "weekday", "day_code", "outage_hours"}); err != nil {
		return err
	}
	week := strconv.Itoa(rec.Week)
	for i, d := range rec.Days {
		row := []string{
			week,
			timetable.DayNames[i],
			string(d),
			strconv.FormatFloat(d.OutageHours(), 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format ("json" or "csv").
func Write(w io.Writer, format string, rec timetable.WeekRecord) error {
	switch format {
	case "", "json":
		return WriteJSON(w, rec)
	case "csv":
		return WriteCSV(w, rec)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
