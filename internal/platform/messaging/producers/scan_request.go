package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/savings-group-ledger/internal/config"
)

// ScanReqMessageProducer publishes delinquency scan requests from the API
// gateway to the processor
type ScanReqMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewScanReqMessageProducer creates the gateway producer and ensures the
// scan topic exists
func NewScanReqMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ScanReqMessageProducer, error) {
	if cfg.ScanTopic == "" {
		return nil, fmt.Errorf("kafka scan topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for scan producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ScanTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure scan topic %s exists: %w", cfg.ScanTopic, err)
	}

	// Scans are low-volume administrative actions, so writes are synchronous
	// with full acknowledgement rather than async
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ScanTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &ScanReqMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ScanTopic,
	}, nil
}

func (p *ScanReqMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal scan request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish scan request",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish scan request to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published scan request",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ScanReqMessageProducer) Close() error {
	p.logger.Info("Closing scan request producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
