package kafka

import (
	"context"
	"encoding/json"

	"github.com/pathshare/tracker/internal/track"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Sink publishes accepted fixes to a Kafka topic for downstream pipelines
// (smoothing, analytics). Messages are keyed by device id so one device's
// fixes stay on one partition.
type Sink struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// Config holds Kafka sink configuration
type Config struct {
	Brokers string
	Topic   string
}

// NewSink creates a new Kafka-backed fix sink
func NewSink(cfg Config, logger *logrus.Logger) *Sink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}

	return &Sink{
		writer: writer,
		logger: logger,
	}
}

// Publish writes one fix to the topic
func (s *Sink) Publish(ctx context.Context, fix track.Fix) error {
	value, err := json.Marshal(fix)
	if err != nil {
		return err
	}

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fix.DeviceID),
		Value: value,
	}); err != nil {
		s.logger.WithFields(logrus.Fields{
			"error":     err,
			"device_id": fix.DeviceID,
		}).Error("Failed to write fix to Kafka")
		return err
	}

	return nil
}

// Close closes the underlying writer
func (s *Sink) Close() error {
	return s.writer.Close()
}
