package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/svitlosync/core/factory"
	"github.com/kilianp07/svitlosync/core/publisher"
	"github.com/kilianp07/svitlosync/core/timetable"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func TestMirror_PublishesRetained(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	m, err := NewMirror(Config{Broker: "tcp://localhost:1883", Queue: "6.1", QoS: 1})
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	rec := timetable.NewWeekRecord(45)
	if err := m.Mirror(context.Background(), rec); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(mc.published))
	}
	got := mc.published[0]
	if got.topic != "svitlosync/6.1/timetable" || got.qos != 1 || !got.retained {
		t.Fatalf("unexpected publish: %+v", got)
	}
	var p publisher.MirrorPayload
	if err := json.Unmarshal(got.payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Week != 45 || p.Timetable != rec.Timetable() {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	m, err := NewMirror(cfg)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	_ = m.Close()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMockClient(t, mc)
	m, err := NewMirror(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if err := m.Mirror(context.Background(), timetable.NewWeekRecord(1)); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries")
	}
}

func TestRetryExhausted(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	withMockClient(t, mc)
	m, err := NewMirror(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	err = m.Mirror(context.Background(), timetable.NewWeekRecord(1))
	if !errors.Is(err, fail) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(mc.published))
	}
}

func TestRegisteredFactory(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	mirrors, err := publisher.NewMirrors([]factory.ModuleConfig{{
		Type: "mqtt",
		Conf: map[string]any{"broker": "tcp://localhost:1883", "qos": "1", "max_retries": 2},
	}}, "3.2")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	m, ok := mirrors[0].(*Mirror)
	if !ok {
		t.Fatalf("unexpected type %T", mirrors[0])
	}
	if m.topic != "svitlosync/3.2/timetable" || m.qos != 1 || m.maxRetries != 2 {
		t.Fatalf("config not decoded: %+v", m)
	}
}

func TestNewMirrorRequiresBroker(t *testing.T) {
	if _, err := NewMirror(Config{}); err == nil {
		t.Fatalf("expected error")
	}
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	// stalled makes every publish token stay pending, as paho does while
	// it queues messages during a reconnect.
	stalled bool
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic: topic, qos: qos, retained: retained, payload: b})
	if m.stalled {
		return pendingToken{}
	}
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(string, byte, paho.MessageHandler) paho.Token { return &dummyToken{} }
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

var _ paho.Client = (*mockClient)(nil)

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

// pendingToken never completes.
type pendingToken struct{}

func (pendingToken) Wait() bool                     { select {} }
func (pendingToken) WaitTimeout(time.Duration) bool { return false }
func (pendingToken) Done() <-chan struct{}          { return nil }
func (pendingToken) Error() error                   { return nil }

func TestMirrorStalledPublishTimesOut(t *testing.T) {
	mc := &mockClient{stalled: true}
	withMockClient(t, mc)
	m, err := NewMirror(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1, TimeoutMS: 20})
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Mirror(context.Background(), timetable.NewWeekRecord(45)) }()
	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected timeout error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("mirror blocked on a stalled publish")
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(mc.published))
	}
}

func TestMirrorStalledPublishHonoursContext(t *testing.T) {
	mc := &mockClient{stalled: true}
	withMockClient(t, mc)
	m, err := NewMirror(Config{Broker: "tcp://localhost:1883", TimeoutMS: 60000})
	if err != nil {
		t.Fatalf("new mirror: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = m.Mirror(ctx, timetable.NewWeekRecord(45))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("mirror ignored the context deadline")
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected no retry after cancellation, got %d attempts", len(mc.published))
	}
}

func TestConfigDefaultsPublishTimeout(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.TimeoutMS != 5000 {
		t.Fatalf("timeout default: %d", c.TimeoutMS)
	}
}
