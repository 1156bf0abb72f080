package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	apitimetable "github.com/kilianp07/svitlosync/api/timetable"
	"github.com/kilianp07/svitlosync/app/plugins"
	"github.com/kilianp07/svitlosync/config"
	"github.com/kilianp07/svitlosync/core/events"
	"github.com/kilianp07/svitlosync/core/factory"
	coremetrics "github.com/kilianp07/svitlosync/core/metrics"
	"github.com/kilianp07/svitlosync/core/monitoring"
	"github.com/kilianp07/svitlosync/core/publisher"
	"github.com/kilianp07/svitlosync/core/source"
	corestore "github.com/kilianp07/svitlosync/core/store"
	"github.com/kilianp07/svitlosync/core/syncer"
	"github.com/kilianp07/svitlosync/infra/logger"
	"github.com/kilianp07/svitlosync/infra/metrics"
	inframon "github.com/kilianp07/svitlosync/infra/monitoring"
	"github.com/kilianp07/svitlosync/infra/publisher/svitlobot"
	"github.com/kilianp07/svitlosync/infra/source/besvitlo"
	infrastore "github.com/kilianp07/svitlosync/infra/store"
	"github.com/kilianp07/svitlosync/internal/eventbus"
)

// Service wires the sync controller, its adapters and the optional
// metrics and status servers.
type Service struct {
	Controller *syncer.Controller
	Store      *corestore.WeeklyStore

	cfg       *config.Config
	backend   corestore.Backend
	loop      *syncer.Loop
	bus       *eventbus.Bus[events.Event]
	sink      coremetrics.MetricsSink
	mirrors   []publisher.Mirror
	mon       monitoring.Monitor
	log       logger.Logger
	now       func() time.Time
	collector <-chan struct{}
}

type options struct {
	source    source.ScheduleSource
	publisher publisher.Publisher
	backend   corestore.Backend
	now       func() time.Time
	maxPasses int
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

// WithSource replaces the be-svitlo client.
func WithSource(s source.ScheduleSource) Option { return func(o *options) { o.source = s } }

// WithPublisher replaces the svitlobot client.
func WithPublisher(p publisher.Publisher) Option { return func(o *options) { o.publisher = p } }

// WithBackend replaces the configured store backend.
func WithBackend(b corestore.Backend) Option { return func(o *options) { o.backend = b } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithMaxPasses stops Run after n passes.
func WithMaxPasses(n int) Option { return func(o *options) { o.maxPasses = n } }

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	logg := logger.New("service")

	loc, err := cfg.Source.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	backend := o.backend
	if backend == nil {
		if backend, err = infrastore.NewBackend(ctx, cfg.Store); err != nil {
			return nil, fmt.Errorf("store backend: %w", err)
		}
	}
	weekly := corestore.NewWeeklyStore(backend, logger.New("store"), mon)

	src := o.source
	if src == nil {
		src = besvitlo.NewClient(cfg.Source, loc, logger.New("source"))
	}
	pub := o.publisher
	if pub == nil {
		pub = svitlobot.NewClient(cfg.Publisher, logger.New("publisher"))
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("metrics sinks (known: %v): %w", plugins.MetricsSinks(), err)
	}
	mirrors, err := publisher.NewMirrors(cfg.Mirrors, cfg.Source.Queue)
	if err != nil {
		_ = factory.Close(sink)
		_ = backend.Close()
		return nil, fmt.Errorf("mirrors (known: %v): %w", plugins.Mirrors(), err)
	}

	bus := eventbus.New[events.Event]()
	ctrl, err := syncer.NewController(src, weekly, pub, logger.New("syncer"),
		syncer.WithClock(o.now),
		syncer.WithLocation(loc),
		syncer.WithEventBus(bus),
		syncer.WithMirrors(mirrors...),
		syncer.WithMonitor(mon),
	)
	if err != nil {
		_ = factory.CloseAll(mirrors)
		_ = factory.Close(sink)
		_ = backend.Close()
		return nil, err
	}
	loop := syncer.NewLoop(ctrl, cfg.Sync.Interval(), logger.New("loop"),
		syncer.WithLoopMonitor(mon),
		syncer.WithMaxPasses(o.maxPasses),
	)

	return &Service{
		Controller: ctrl,
		Store:      weekly,
		cfg:        cfg,
		backend:    backend,
		loop:       loop,
		bus:        bus,
		sink:       sink,
		mirrors:    mirrors,
		mon:        mon,
		log:        logg,
		now:        o.now,
	}, nil
}

// Run starts the servers and the poll loop and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.log.Infow("starting timetable sync", map[string]any{
		"queue":    s.cfg.Source.Queue,
		"interval": s.cfg.Sync.Interval().String(),
		"store":    s.cfg.Store.Backend,
		"mirrors":  len(s.mirrors),
	})
	s.startCollector(ctx)
	if s.cfg.Metrics.HasSink("prometheus") && s.cfg.Metrics.PrometheusAddress != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddress, nil, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Address != "" {
		router := apitimetable.NewRouter(s.backend, s.Controller, s.currentTime)
		go func() {
			if err := apitimetable.Serve(ctx, s.cfg.API.Address, router, s.log); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	return s.loop.Run(ctx)
}

// SyncOnce runs a single pass.
func (s *Service) SyncOnce(ctx context.Context) syncer.PassResult {
	s.startCollector(ctx)
	return s.Controller.Sync(ctx)
}

func (s *Service) startCollector(ctx context.Context) {
	if s.collector == nil {
		s.collector = metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	}
}

func (s *Service) currentTime() time.Time {
	loc, err := s.cfg.Source.Location()
	if err != nil {
		return s.now()
	}
	return s.now().In(loc)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.collector != nil {
		select {
		case <-s.collector:
		case <-time.After(5 * time.Second):
			s.log.Warnf("metrics collector did not drain in time")
		}
	}
	errs := []error{
		factory.CloseAll(s.mirrors),
		factory.Close(s.sink),
		s.Store.Close(),
	}
	s.mon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
