package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/testutil"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

type mockKafkaConn struct {
	created   []kafka.TopicConfig
	createErr error
	readFunc  func(topics ...string) ([]kafka.Partition, error)
	closed    bool
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error {
	m.closed = true
	return nil
}

func newTestTopicManager(conn ConnInterface) *TopicManager {
	return &TopicManager{conn: conn, logger: testutil.NewMockLogger()}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics(0)
	require.Len(t, topics, 2)
	assert.Equal(t, TopicPredictionCompleted, topics[0].Name)
	assert.Equal(t, 1, topics[0].ReplicationFactor)
	assert.Equal(t, 3, DefaultTopics(3)[1].ReplicationFactor)
}

func TestCreateTopic_ConfigEntries(t *testing.T) {
	conn := &mockKafkaConn{}
	m := newTestTopicManager(conn)

	err := m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 2, ReplicationFactor: 1, RetentionMs: 1000, CleanupPolicy: "delete"})
	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, []kafka.ConfigEntry{
		{ConfigName: "retention.ms", ConfigValue: "1000"},
		{ConfigName: "cleanup.policy", ConfigValue: "delete"},
	}, conn.created[0].ConfigEntries)
}

func TestCreateTopic_Invalid(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{})
	for _, cfg := range []TopicConfig{
		{NumPartitions: 1, ReplicationFactor: 1},
		{Name: "t", ReplicationFactor: 1},
		{Name: "t", NumPartitions: 1},
	} {
		err := m.CreateTopic(context.Background(), cfg)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidation), "%+v", cfg)
	}
}

func TestCreateTopic_AlreadyExists(t *testing.T) {
	conn := &mockKafkaConn{
		createErr: stderrors.New("topic already exists"),
		readFunc: func(topics ...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: topics[0]}}, nil
		},
	}
	m := newTestTopicManager(conn)
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestCreateTopic_Failure(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{createErr: stderrors.New("not controller")})
	err := m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
}

func TestEnsureTopics(t *testing.T) {
	conn := &mockKafkaConn{}
	m := newTestTopicManager(conn)
	require.NoError(t, m.EnsureTopics(context.Background(), DefaultTopics(1)))
	assert.Len(t, conn.created, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.EnsureTopics(ctx, DefaultTopics(1)), context.Canceled)

	require.NoError(t, m.Close())
	assert.True(t, conn.closed)
}

func TestNewTopicManager_NoBrokers(t *testing.T) {
	_, err := NewTopicManager(context.Background(), nil, testutil.NewMockLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	payload := PredictionCompletedPayload{
		InputSMILES:        "OC(=O)C(F)(F)F",
		StandardizedSMILES: "O=C(O)C(F)(F)F",
		Prediction:         2.75,
		ADStatus:           "Pass",
		ADMessage:          "Pass",
		Similarity:         1,
		Numeric:            map[string]float64{"temperature": 25},
	}
	env, err := NewEventEnvelope(EventTypePredictionCompleted, "toxpredict-apiserver", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	env.TraceID = "req-1"

	msg, err := env.ToMessage(TopicPredictionCompleted, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", string(msg.Key))
	assert.Equal(t, EventTypePredictionCompleted, msg.Headers["event_type"])
	assert.Equal(t, "req-1", msg.Headers["trace_id"])

	decoded, err := DecodeEventEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)

	var got PredictionCompletedPayload
	require.NoError(t, decoded.DecodePayload(&got))
	assert.Equal(t, payload, got)
}

func TestEventEnvelope_Errors(t *testing.T) {
	_, err := NewEventEnvelope("x", "s", func() {})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	_, err = DecodeEventEnvelope(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = DecodeEventEnvelope([]byte("{"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	env := &EventEnvelope{}
	var p BundleLoadedPayload
	assert.NoError(t, env.DecodePayload(&p))

	msg, err := (&EventEnvelope{EventType: "x"}).ToMessage("t", "")
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
	_, hasTrace := msg.Headers["trace_id"]
	assert.False(t, hasTrace)
}

//Personal.AI order the ending
