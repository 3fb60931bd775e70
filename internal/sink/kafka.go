package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"rugwatch/internal/domain"
)

// KafkaSink publishes reports to a Kafka topic and waits for broker ACK.
// Messages are keyed by contract address so all reports for a contract
// land on the same partition.
type KafkaSink struct {
	topic string
	sp    sarama.SyncProducer
}

var _ ReportSink = (*KafkaSink)(nil)

// NewKafkaSink connects a sync producer to the given brokers (CSV list).
func NewKafkaSink(brokersCSV, topic string) (*KafkaSink, error) {
	if topic == "" {
		return nil, errors.New("topic empty")
	}
	brokers := splitCSV(brokersCSV)
	if len(brokers) == 0 {
		return nil, errors.New("no brokers")
	}

	cfg := sarama.NewConfig()

	// Reliability-oriented defaults
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 10
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond

	// SyncProducer must have Return.Successes=true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	cfg.Version = sarama.V2_1_0_0

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaSink{topic: topic, sp: sp}, nil
}

// Publish sends the report to Kafka and waits for broker ACK (sync).
// It is safe to checkpoint after this returns nil.
func (s *KafkaSink) Publish(ctx context.Context, r *domain.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(r.Contract),
		Value: sarama.ByteEncoder(payload),
	}

	// sarama SyncProducer doesn't accept context directly; check ctx before sending.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, _, err := s.sp.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

// Close shuts down the producer.
func (s *KafkaSink) Close() error {
	if s.sp != nil {
		return s.sp.Close()
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, x := range parts {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
