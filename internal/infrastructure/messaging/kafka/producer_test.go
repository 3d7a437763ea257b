package kafka

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/testutil"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

type mockKafkaWriter struct {
	mu        sync.Mutex
	written   []kafka.Message
	writeErr  error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newTestProducer(w WriterInterface, mutate ...func(*ProducerConfig)) (*Producer, *testutil.MockLogger) {
	cfg := ProducerConfig{Brokers: []string{"localhost:9092"}}
	for _, fn := range mutate {
		fn(&cfg)
	}
	applyProducerDefaults(&cfg)
	log := testutil.NewMockLogger()
	return &Producer{writer: w, config: cfg, logger: log, metrics: &ProducerMetrics{}}, log
}

func newTestMessage(value string) *ProducerMessage {
	return &ProducerMessage{Topic: TopicPredictionCompleted, Key: []byte("k"), Value: []byte(value),
		Headers: map[string]string{"event_type": EventTypePredictionCompleted}}
}

func TestValidateProducerConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProducerConfig
		wantErr bool
	}{
		{"valid", ProducerConfig{Brokers: []string{"b:9092"}}, false},
		{"valid_acks_all", ProducerConfig{Brokers: []string{"b:9092"}, Acks: "all"}, false},
		{"empty_brokers", ProducerConfig{}, true},
		{"negative_retries", ProducerConfig{Brokers: []string{"b:9092"}, MaxRetries: -1}, true},
		{"unknown_acks", ProducerConfig{Brokers: []string{"b:9092"}, Acks: "some"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProducerConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewProducer_Defaults(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Acks: "all", CompressionCodec: "snappy"}, testutil.NewMockLogger())
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 3, p.config.MaxRetries)
	assert.Equal(t, 1024*1024, p.config.MaxMessageBytes)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, kafka.Snappy, w.Compression)
	assert.Equal(t, 4, w.MaxAttempts)
}

func TestNewProducer_SASL(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Brokers: []string{"b:9092"}, SASLEnabled: true, SASLMechanism: "SCRAM-SHA-512",
		SASLUsername: "u", SASLPassword: "p"}, testutil.NewMockLogger())
	assert.NoError(t, err)

	_, err = NewProducer(ProducerConfig{Brokers: []string{"b:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI"}, testutil.NewMockLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestNewProducer_MissingCACert(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Brokers: []string{"b:9092"}, TLSEnabled: true, TLSCertPath: "/nonexistent/ca.pem"}, testutil.NewMockLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p, _ := newTestProducer(w)

	require.NoError(t, p.Publish(context.Background(), newTestMessage("v")))
	require.Len(t, w.written, 1)
	assert.Equal(t, TopicPredictionCompleted, w.written[0].Topic)
	assert.Equal(t, "k", string(w.written[0].Key))
	assert.Equal(t, "v", string(w.written[0].Value))
	assert.False(t, w.written[0].Time.IsZero())
	require.Len(t, w.written[0].Headers, 1)
	assert.Equal(t, "event_type", w.written[0].Headers[0].Key)

	sent, failed, bytes := p.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Zero(t, failed)
	assert.Equal(t, int64(1), bytes)
}

func TestPublish_Validation(t *testing.T) {
	p, _ := newTestProducer(&mockKafkaWriter{}, func(c *ProducerConfig) { c.MaxMessageBytes = 4 })
	tests := []struct {
		name string
		msg  *ProducerMessage
	}{
		{"nil", nil},
		{"no_topic", &ProducerMessage{Value: []byte("v")}},
		{"no_value", &ProducerMessage{Topic: "t"}},
		{"too_large", &ProducerMessage{Topic: "t", Value: []byte("12345")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Publish(context.Background(), tt.msg)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
		})
	}
}

func TestPublish_WriteFailure(t *testing.T) {
	p, _ := newTestProducer(&mockKafkaWriter{writeErr: stderrors.New("broker down")})
	err := p.Publish(context.Background(), newTestMessage("v"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventPublish))
	_, failed, _ := p.Stats()
	assert.Equal(t, int64(1), failed)
}

func TestPublish_Closed(t *testing.T) {
	closes := 0
	p, _ := newTestProducer(&mockKafkaWriter{closeFunc: func() error { closes++; return nil }})
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)
	assert.ErrorIs(t, p.Publish(context.Background(), newTestMessage("v")), ErrProducerClosed)
}

func TestCompletion_Async(t *testing.T) {
	var gotTopic string
	var gotCount int
	p, log := newTestProducer(&mockKafkaWriter{}, func(c *ProducerConfig) {
		c.Async = true
		c.AsyncErrorHandler = func(_ error, topic string, count int) {
			gotTopic, gotCount = topic, count
		}
	})

	require.NoError(t, p.Publish(context.Background(), newTestMessage("v")))
	sent, _, _ := p.Stats()
	assert.Zero(t, sent)

	p.completion([]kafka.Message{{Topic: "a"}}, nil)
	p.completion([]kafka.Message{{Topic: "a"}, {Topic: "a"}}, stderrors.New("timeout"))

	sent, failed, _ := p.Stats()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(2), failed)
	assert.Equal(t, "a", gotTopic)
	assert.Equal(t, 2, gotCount)
	assert.True(t, log.HasMessage("warn", "Async publish failed"))
}

func TestCompletion_SyncIgnored(t *testing.T) {
	p, _ := newTestProducer(&mockKafkaWriter{})
	p.completion([]kafka.Message{{Topic: "a"}}, stderrors.New("x"))
	_, failed, _ := p.Stats()
	assert.Zero(t, failed)
}

//Personal.AI order the ending
