package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// DispatcherConfig tunes the delivery loop.
type DispatcherConfig struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
	DrainTimeout time.Duration
}

// Dispatcher drains the outbox and delivers events through a messageWriter.
type Dispatcher struct {
	source           *Outbox
	producer         messageWriter
	topic            string
	pollInterval     time.Duration
	batchSize        int
	drainTimeout     time.Duration
	logger           *zap.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(source *Outbox, producer messageWriter, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		source:           source,
		producer:         producer,
		topic:            cfg.Topic,
		pollInterval:     cfg.PollInterval,
		batchSize:        cfg.BatchSize,
		drainTimeout:     cfg.DrainTimeout,
		logger:           logger,
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine. When
// ctx is cancelled the remaining events are flushed before Start returns.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("outbox dispatcher error", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
			if err := d.Flush(drainCtx); err != nil {
				d.logger.Warn("outbox final drain incomplete", zap.Error(err), zap.Int("pending", d.source.Pending()))
			}
			cancel()
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

// Flush delivers batches until the outbox is empty or a batch fails.
func (d *Dispatcher) Flush(ctx context.Context) error {
	for {
		delivered, err := d.processBatch(ctx)
		if err != nil {
			return err
		}
		if delivered < d.batchSize {
			return nil
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	messages := d.source.take(d.batchSize)
	if len(messages) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	if err := d.producer.WriteMessages(ctx, d.topic, toKafkaMessages(messages)...); err != nil {
		failedCounter.Add(float64(len(messages)))
		d.logger.Error("outbox delivery failure",
			zap.Error(err),
			zap.Int("batch_size", len(messages)),
			zap.String("first_event_id", messages[0].EventID))
		return len(messages), err
	}

	deliveredCounter.Add(float64(len(messages)))
	d.logger.Debug("outbox batch delivered", zap.Int("batch_size", len(messages)))
	return len(messages), nil
}

func toKafkaMessages(messages []Message) []kafka.Message {
	out := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, kafka.Message{
			Key:   []byte(msg.Key),
			Value: msg.Payload,
			Time:  msg.CreatedAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(msg.EventType)},
				{Key: "event_id", Value: []byte(msg.EventID)},
			},
		})
	}
	return out
}
