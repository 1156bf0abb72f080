package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/svitlosync/core/events"
)

type recordSink struct {
	passes int
	days   int
	err    error
}

func (r *recordSink) RecordPass(events.PassFinished) error {
	r.passes++
	return r.err
}

func (r *recordSink) RecordDay(events.DayProcessed) error {
	r.days++
	return r.err
}

type passOnly struct{ passes int }

func (p *passOnly) RecordPass(events.PassFinished) error {
	p.passes++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &passOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPass(events.PassFinished{}); err != nil {
		t.Fatalf("record pass: %v", err)
	}
	if err := m.RecordDay(events.DayProcessed{}); err != nil {
		t.Fatalf("record day: %v", err)
	}
	if s1.passes != 1 || s1.days != 1 || s2.passes != 1 {
		t.Fatalf("records not forwarded: %+v %+v", s1, s2)
	}
}

func TestMultiSinkKeepsForwardingAfterError(t *testing.T) {
	failing := &recordSink{err: errors.New("down")}
	ok := &recordSink{}
	m := NewMultiSink(failing, ok)
	if err := m.RecordPass(events.PassFinished{}); err == nil {
		t.Fatalf("expected error")
	}
	if ok.passes != 1 {
		t.Fatalf("second sink skipped")
	}
}

func TestConfigHasSink(t *testing.T) {
	cfg := Config{}
	if cfg.HasSink("prometheus") {
		t.Fatalf("empty config has no sinks")
	}
	cfg.Sinks = append(cfg.Sinks, factoryConfig("prometheus"))
	if !cfg.HasSink("prometheus") {
		t.Fatalf("expected prometheus sink")
	}
}

type dropSink struct {
	passOnly
	dropped uint64
	closed  bool
}

func (d *dropSink) RecordDropped(n uint64) { d.dropped += n }
func (d *dropSink) Close() error           { d.closed = true; return nil }

func TestMultiSinkDroppedAndClose(t *testing.T) {
	d := &dropSink{}
	m := NewMultiSink(&passOnly{}, d)
	m.RecordDropped(4)
	if d.dropped != 4 {
		t.Fatalf("dropped = %d", d.dropped)
	}
	if err := m.Close(); err != nil || !d.closed {
		t.Fatalf("close: %v closed=%v", err, d.closed)
	}
}
