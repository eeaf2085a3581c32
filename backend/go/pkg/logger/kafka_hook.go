package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// messageWriter is the subset of *kafka.Writer used by KafkaHook.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaHook ships log entries at or above a minimum level to a Kafka topic.
type KafkaHook struct {
	writer    messageWriter
	formatter logrus.Formatter
	levels    []logrus.Level
	timeout   time.Duration
}

// NewKafkaHook creates a hook writing to topic on brokers. Writes are
// asynchronous so a slow broker never stalls request handling.
func NewKafkaHook(brokers []string, topic string, minLevel logrus.Level) (*KafkaHook, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka hook: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka hook: empty topic")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		Async:        true,
	}
	return newKafkaHook(w, minLevel), nil
}

func newKafkaHook(w messageWriter, minLevel logrus.Level) *KafkaHook {
	var levels []logrus.Level
	for _, lvl := range logrus.AllLevels {
		if lvl <= minLevel {
			levels = append(levels, lvl)
		}
	}
	return &KafkaHook{
		writer:    w,
		formatter: newFormatter(),
		levels:    levels,
		timeout:   2 * time.Second,
	}
}

// Levels implements logrus.Hook.
func (h *KafkaHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook.
func (h *KafkaHook) Fire(entry *logrus.Entry) error {
	payload, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	var key []byte
	if svc, ok := entry.Data["service_name"].(string); ok {
		key = []byte(svc)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := h.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: payload}); err != nil {
		return fmt.Errorf("failed to write log entry to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (h *KafkaHook) Close() error {
	return h.writer.Close()
}
