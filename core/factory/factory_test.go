package factory

import (
	"errors"
	"testing"
	"time"
)

type sample struct{ A int }

type sampleConf struct {
	A       int           `json:"a"`
	Timeout time.Duration `json:"timeout"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
	all, err := reg.CreateAll([]ModuleConfig{{Type: "s", Conf: map[string]any{"a": 1}}, {Type: "s"}})
	if err != nil || len(all) != 2 || all[0].A != 1 {
		t.Fatalf("create all: %v %#v", err, all)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
	if _, err := reg.CreateAll([]ModuleConfig{{Type: "x"}, {Type: "y"}}); err == nil {
		t.Fatal("expected error from CreateAll")
	}
	if got := reg.Types(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("types %v", got)
	}
}

func TestDecode_WeakTypes(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": "7", "timeout": "2s"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.A != 7 || c.Timeout != 2*time.Second {
		t.Fatalf("bad decode %#v", c)
	}
}

type closer struct{ closed *int }

func (c closer) Close() error { *c.closed++; return nil }

type quietCloser struct{ closed *int }

func (c quietCloser) Close() { *c.closed++ }

func TestCreateAll_ClosesCreatedOnFailure(t *testing.T) {
	closed := 0
	reg := NewRegistry[any]()
	if err := reg.Register("ok", func(map[string]any) (any, error) { return closer{&closed}, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("quiet", func(map[string]any) (any, error) { return quietCloser{&closed}, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("bad", func(map[string]any) (any, error) { return nil, errors.New("boom") }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := reg.CreateAll([]ModuleConfig{{Type: "ok"}, {Type: "quiet"}, {Type: "bad"}}); err == nil {
		t.Fatal("expected error")
	}
	if closed != 2 {
		t.Fatalf("expected 2 modules closed, got %d", closed)
	}
}

func TestCloseAll_IgnoresNonClosers(t *testing.T) {
	if err := CloseAll([]any{1, "x", nil}); err != nil {
		t.Fatalf("close all: %v", err)
	}
}
