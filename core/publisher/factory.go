package publisher

import (
	"encoding/json"
	"time"

	"github.com/kilianp07/svitlosync/core/factory"
	"github.com/kilianp07/svitlosync/core/timetable"
)

var mirrorRegistry = factory.NewRegistry[Mirror]()

// RegisterMirror adds a mirror factory identified by name.
func RegisterMirror(name string, f factory.Factory[Mirror]) error {
	return mirrorRegistry.Register(name, f)
}

// MirrorTypes lists the registered mirror types.
func MirrorTypes() []string { return mirrorRegistry.Types() }

// NewMirrors creates every configured mirror. The queue is injected into each
// module's settings under "queue" unless already set.
func NewMirrors(cfgs []factory.ModuleConfig, queue string) ([]Mirror, error) {
	withQueue := make([]factory.ModuleConfig, 0, len(cfgs))
	for _, c := range cfgs {
		conf := make(map[string]any, len(c.Conf)+1)
		for k, v := range c.Conf {
			conf[k] = v
		}
		if _, ok := conf["queue"]; !ok {
			conf["queue"] = queue
		}
		withQueue = append(withQueue, factory.ModuleConfig{Type: c.Type, Conf: conf})
	}
	return mirrorRegistry.CreateAll(withQueue)
}

// MirrorPayload is the JSON document sent to mirrors.
type MirrorPayload struct {
	Queue       string              `json:"queue"`
	Week        int                 `json:"week"`
	Days        []timetable.DayCode `json:"days"`
	Timetable   string              `json:"timetable"`
	OutageHours float64             `json:"outage_hours"`
	PublishedAt time.Time           `json:"published_at"`
}

// EncodeMirrorPayload renders rec for queue.
func EncodeMirrorPayload(queue string, rec timetable.WeekRecord, at time.Time) ([]byte, error) {
	var total float64
	for _, d := range rec.Days {
		total += d.OutageHours()
	}
	return json.Marshal(MirrorPayload{
		Queue:       queue,
		Week:        rec.Week,
		Days:        rec.Days[:],
		Timetable:   rec.Timetable(),
		OutageHours: total,
		PublishedAt: at.UTC(),
	})
}
