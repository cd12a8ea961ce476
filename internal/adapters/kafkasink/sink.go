// Package kafkasink publishes decided signals to a Kafka topic as JSON.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

// messageWriter is the subset of *kafka.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config holds the Kafka sink settings.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	MaxAttempts  int
	Logger       ports.Logger
}

// Sink implements ports.Notifier on a kafka-go writer. Messages are keyed by
// symbol so one instrument's signals stay ordered within a partition.
type Sink struct {
	writer messageWriter
	topic  string
	logger ports.Logger
}

// New creates a Kafka sink.
func New(cfg Config) (*Sink, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Kafka sink")
	}
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("%w: kafka brokers and topic are required", ports.ErrConfigurationError)
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Gzip,
		MaxAttempts:            cfg.MaxAttempts,
		WriteTimeout:           cfg.WriteTimeout,
		BatchTimeout:           100 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	cfg.Logger.Info(context.Background(), "Kafka sink configured", map[string]interface{}{"brokers": cfg.Brokers, "topic": cfg.Topic})
	return newSink(writer, cfg.Topic, cfg.Logger), nil
}

func newSink(w messageWriter, topic string, logger ports.Logger) *Sink {
	return &Sink{writer: w, topic: topic, logger: logger}
}

// Name identifies the sink in logs.
func (s *Sink) Name() string {
	return "kafka"
}

// Notify publishes sig. kafka-go retries transient broker errors itself.
func (s *Sink) Notify(ctx context.Context, sig *domain.Signal) error {
	op := "Notify"
	if sig == nil {
		return nil
	}
	value, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("%s failed to marshal signal %s: %w", op, sig.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(sig.Symbol),
		Value: value,
		Time:  sig.Timestamp,
		Headers: []kafka.Header{
			{Key: "signal_id", Value: []byte(sig.ID)},
			{Key: "decision", Value: []byte(sig.Decision)},
			{Key: "profile", Value: []byte(sig.Profile)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrDeliveryFailed, err)
	}
	s.logger.Debug(ctx, op+": signal published", map[string]interface{}{"topic": s.topic, "symbol": sig.Symbol, "signalID": sig.ID})
	return nil
}

// Close flushes pending messages and closes the writer.
func (s *Sink) Close() error {
	return s.writer.Close()
}
