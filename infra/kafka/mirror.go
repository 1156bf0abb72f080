// Package kafka mirrors published week records to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kilianp07/svitlosync/core/factory"
	"github.com/kilianp07/svitlosync/core/publisher"
	"github.com/kilianp07/svitlosync/core/timetable"
	"github.com/kilianp07/svitlosync/infra/logger"
)

// Config selects the brokers and topic.
type Config struct {
	Brokers        []string `json:"brokers"`
	Topic          string   `json:"topic"`
	Queue          string   `json:"queue"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Mirror produces one message per published week, keyed by queue.
type Mirror struct {
	w       messageWriter
	queue   string
	topic   string
	timeout time.Duration
	log     logger.Logger
}

func init() {
	_ = publisher.RegisterMirror("kafka", func(conf map[string]any) (publisher.Mirror, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMirror(c)
	})
}

// NewMirror creates a writer for cfg. Connections are opened lazily.
func NewMirror(cfg Config) (*Mirror, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = "svitlosync.timetable"
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newMirror(w, cfg), nil
}

func newMirror(w messageWriter, cfg Config) *Mirror {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mirror{w: w, queue: cfg.Queue, topic: cfg.Topic, timeout: timeout, log: logger.New("kafka_mirror")}
}

// Mirror writes rec to the topic.
func (m *Mirror) Mirror(ctx context.Context, rec timetable.WeekRecord) error {
	now := time.Now()
	b, err := publisher.EncodeMirrorPayload(m.queue, rec, now)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	msg := kafka.Message{Key: []byte(m.queue), Value: b, Time: now}
	if err := m.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write to %s: %w", m.topic, err)
	}
	m.log.Debugf("mirrored week %d to kafka topic %s", rec.Week, m.topic)
	return nil
}

func (m *Mirror) Close() error { return m.w.Close() }
