package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Brokers: []string{"localhost:9092"}, Topic: "signals", Logger: &mockLogger{}}},
		{name: "nil logger", cfg: Config{Brokers: []string{"localhost:9092"}, Topic: "signals"}, wantErr: true},
		{name: "no brokers", cfg: Config{Topic: "signals", Logger: &mockLogger{}}, wantErr: true},
		{name: "no topic", cfg: Config{Brokers: []string{"localhost:9092"}, Logger: &mockLogger{}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "kafka", s.Name())
		})
	}
}

func TestNotify(t *testing.T) {
	w := &fakeWriter{}
	s := newSink(w, "signals", &mockLogger{})
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sig := &domain.Signal{ID: "abc", Symbol: "SOLUSDT", Profile: "range", Decision: domain.DecisionBuy, Entry: 150, Timestamp: at}

	require.NoError(t, s.Notify(context.Background(), sig))
	require.NoError(t, s.Notify(context.Background(), nil))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "SOLUSDT", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "abc", string(msg.Headers[0].Value))
	assert.Equal(t, "BUY", string(msg.Headers[1].Value))

	var decoded domain.Signal
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "abc", decoded.ID)
	assert.Equal(t, 150.0, decoded.Entry)

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestNotify_WriteFailure(t *testing.T) {
	s := newSink(&fakeWriter{err: errors.New("broker down")}, "signals", &mockLogger{})
	err := s.Notify(context.Background(), &domain.Signal{ID: "x", Symbol: "BTCUSDT"})
	assert.ErrorIs(t, err, ports.ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "broker down")
}
