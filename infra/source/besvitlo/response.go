package besvitlo

import "github.com/kilianp07/svitlosync/core/timetable"

// DateLayout is the eventDate format used by the upstream (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// Response is the schedule-by-queue payload: one entry per announced date.
type Response []DayEntry

// DayEntry lists the outage windows of one date for every queue it covers.
type DayEntry struct {
	EventDate string                           `json:"eventDate"`
	Queues    map[string][]timetable.RawWindow `json:"queues"`
}

// Windows returns the windows for queue on the date formatted as DateLayout.
// found is false when the date or the queue is missing.
func (r Response) Windows(date, queue string) (windows []timetable.RawWindow, found bool) {
	for _, d := range r {
		if d.EventDate != date {
			continue
		}
		w, ok := d.Queues[queue]
		if !ok {
			return nil, false
		}
		return w, true
	}
	return nil, false
}
