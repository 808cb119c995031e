package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const writerBatchTimeout = 50 * time.Millisecond

// KafkaProducer lazily manages writers per topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages writes messages to the given topic, creating a writer if necessary.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer := p.writerForTopic(topic)
	return writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	// Hash on the activity key keeps each roster's events in one partition.
	// The dispatcher already batches, so the writer flushes without lingering.
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           writerBatchTimeout,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// LogWriter stands in for Kafka when no brokers are configured and logs
// every message instead.
type LogWriter struct {
	Logger *zap.Logger
}

// WriteMessages logs msgs at debug level.
func (w LogWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	if w.Logger == nil {
		return nil
	}
	for _, msg := range msgs {
		w.Logger.Debug("roster event",
			zap.String("topic", topic),
			zap.ByteString("key", msg.Key),
			zap.ByteString("value", msg.Value))
	}
	return nil
}

// Close is a no-op.
func (LogWriter) Close() error { return nil }
