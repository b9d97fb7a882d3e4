package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Kafka header names set on every message.
const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
)

// writeAttempts is how many times a kafka writer tries a batch before failing it.
const writeAttempts = 5

// KafkaConfig selects brokers and topics for the KafkaSink.
type KafkaConfig struct {
	Brokers     []string
	LedgerTopic string
	ReportTopic string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaSink publishes envelopes with one lazily created writer per topic.
// Journal entry events go to the ledger topic and ReportGenerated to the report topic.
type KafkaSink struct {
	cfg       KafkaConfig
	mu        sync.Mutex
	writers   map[string]messageWriter
	newWriter func(topic string) messageWriter
}

func NewKafkaSink(cfg KafkaConfig) *KafkaSink {
	s := &KafkaSink{
		cfg:     cfg,
		writers: make(map[string]messageWriter),
	}
	s.newWriter = func(topic string) messageWriter {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  writeAttempts,
		}
	}
	return s
}

// TopicFor returns the topic an event type is routed to.
func (s *KafkaSink) TopicFor(eventType string) string {
	if eventType == domain.EventReportGenerated {
		return s.cfg.ReportTopic
	}
	return s.cfg.LedgerTopic
}

// Deliver writes the envelope keyed by aggregate id, so events of one entry stay ordered within a partition.
func (s *KafkaSink) Deliver(ctx context.Context, envelope Envelope) error {
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", envelope.EventID, err)
	}

	topic := s.TopicFor(envelope.EventType)
	msg := kafkago.Message{
		Key:   []byte(envelope.AggregateID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: HeaderEventType, Value: []byte(envelope.EventType)},
			{Key: HeaderEventID, Value: []byte(envelope.EventID)},
		},
	}
	if err := s.writer(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

func (s *KafkaSink) writer(topic string) messageWriter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.writers[topic]; ok {
		return w
	}
	w := s.newWriter(topic)
	s.writers[topic] = w
	return w
}

// Close closes all writers.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for topic, w := range s.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	s.writers = make(map[string]messageWriter)
	return firstErr
}
