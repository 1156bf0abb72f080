package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/svitlosync/core/factory"
	"github.com/kilianp07/svitlosync/core/publisher"
	"github.com/kilianp07/svitlosync/core/timetable"
	"github.com/kilianp07/svitlosync/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Queue      string      `json:"queue"`
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	LWTTopic   string      `json:"lwt_topic"`
	LWTPayload string      `json:"lwt_payload"`
	LWTQoS     byte        `json:"lwt_qos"`
	LWTRetain  bool        `json:"lwt_retain"`
	MaxRetries int         `json:"max_retries"`
	BackoffMS  int         `json:"backoff_ms"`
	// TimeoutMS bounds each publish attempt, including time spent queued
	// while the client reconnects.
	TimeoutMS  int         `json:"timeout_ms"`
	TLSConfig  *tls.Config `json:"-"`
}

// SetDefaults fills the topic and client id.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = fmt.Sprintf("svitlosync/%s/timetable", c.Queue)
	}
	if c.ClientID == "" {
		c.ClientID = "svitlosync-" + uuid.NewString()[:8]
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Mirror publishes every week record as a retained JSON message.
type Mirror struct {
	cli        pahoClient
	queue      string
	topic      string
	qos        byte
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	logger     logger.Logger
	now        func() time.Time
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

func init() {
	_ = publisher.RegisterMirror("mqtt", func(conf map[string]any) (publisher.Mirror, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMirror(c)
	})
}

// NewMirror connects to the MQTT broker.
func NewMirror(cfg Config) (*Mirror, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker is required")
	}
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_mirror")
	m := &Mirror{
		queue:      cfg.Queue,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		timeout:    time.Duration(cfg.TimeoutMS) * time.Millisecond,
		logger:     logger,
		now:        time.Now,
	}
	opts.OnConnect = func(paho.Client) {
		logger.Infof("MQTT connected, mirroring to %s", m.topic)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout + time.Second) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	m.cli = c
	return m, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// Mirror publishes rec retained on the configured topic, retrying with
// exponential backoff. An attempt that does not complete within the publish
// timeout counts as failed.
func (m *Mirror) Mirror(ctx context.Context, rec timetable.WeekRecord) error {
	payload, err := publisher.EncodeMirrorPayload(m.queue, rec, m.now())
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		publishErr = m.publish(ctx, payload)
		if publishErr == nil {
			m.logger.Infof("mirrored week %d to %s", rec.Week, m.topic)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		m.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == m.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("mqtt publish to %s: %w", m.topic, publishErr)
}

func (m *Mirror) publish(ctx context.Context, payload []byte) error {
	token := m.cli.Publish(m.topic, m.qos, true, payload)
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish not acknowledged within %s", m.timeout)
	}
}

// Close gracefully closes the MQTT connection.
func (m *Mirror) Close() error {
	if m.cli != nil && m.cli.IsConnected() {
		m.cli.Disconnect(250)
	}
	return nil
}
