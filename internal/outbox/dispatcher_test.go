package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/events"
)

type stubWriter struct {
	mu       sync.Mutex
	topics   []string
	messages []kafka.Message
	calls    int
	err      error
}

func (s *stubWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.topics = append(s.topics, topic)
	s.messages = append(s.messages, msgs...)
	return nil
}

func (s *stubWriter) snapshot() []kafka.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]kafka.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func enrolled(activity, email string, size int) domain.RosterChange {
	return domain.RosterChange{
		Type:       domain.RosterChangeEnrolled,
		Activity:   activity,
		Email:      email,
		RosterSize: size,
		OccurredAt: time.Date(2025, time.September, 1, 15, 30, 0, 0, time.UTC),
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestRecordSerialisesEvents(t *testing.T) {
	box := New(4)
	ctx := context.Background()

	require.NoError(t, box.Record(ctx, enrolled("Chess Club", "new@mergington.edu", 3)))
	require.NoError(t, box.Record(ctx, domain.RosterChange{
		Type:       domain.RosterChangeWithdrawn,
		Activity:   "Chess Club",
		Email:      "new@mergington.edu",
		RosterSize: 2,
	}))
	require.Equal(t, 2, box.Pending())

	msgs := box.take(10)
	require.Len(t, msgs, 2)
	require.Equal(t, 0, box.Pending())

	require.Equal(t, events.TypeParticipantEnrolled, msgs[0].EventType)
	require.Equal(t, "Chess Club", msgs[0].Key)
	var evt events.ParticipantEnrolled
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &evt))
	require.Equal(t, msgs[0].EventID, evt.EventID)
	require.Equal(t, "new@mergington.edu", evt.Email)
	require.Equal(t, 3, evt.RosterSize)

	require.Equal(t, events.TypeParticipantWithdrawn, msgs[1].EventType)
	require.False(t, msgs[1].CreatedAt.IsZero())
}

func TestRecordRejectsWhenFull(t *testing.T) {
	box := New(1)
	ctx := context.Background()

	require.NoError(t, box.Record(ctx, enrolled("Chess Club", "a@mergington.edu", 1)))
	before := testutil.ToFloat64(droppedCounter)
	err := box.Record(ctx, enrolled("Chess Club", "b@mergington.edu", 2))
	require.ErrorIs(t, err, ErrOutboxFull)
	require.Equal(t, before+1, testutil.ToFloat64(droppedCounter))
}

func TestRecordRejectsUnknownType(t *testing.T) {
	box := New(1)
	err := box.Record(context.Background(), domain.RosterChange{Type: "participant.renamed"})
	require.Error(t, err)
	require.Equal(t, 0, box.Pending())
}

func TestFlushDeliversInBatches(t *testing.T) {
	box := New(16)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, box.Record(ctx, enrolled("Drama Club", fmt.Sprintf("s%d@mergington.edu", i), i+1)))
	}

	writer := &stubWriter{}
	d := NewDispatcher(box, writer, DispatcherConfig{Topic: "roster", BatchSize: 2}, zaptest.NewLogger(t))

	before := testutil.ToFloat64(deliveredCounter)
	require.NoError(t, d.Flush(ctx))

	require.Equal(t, 3, writer.calls)
	require.Equal(t, []string{"roster", "roster", "roster"}, writer.topics)
	require.Equal(t, before+5, testutil.ToFloat64(deliveredCounter))

	msgs := writer.snapshot()
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		require.Equal(t, "Drama Club", string(msg.Key))
		require.Equal(t, events.TypeParticipantEnrolled, headerValue(msg, "event_type"))
		var evt events.ParticipantEnrolled
		require.NoError(t, json.Unmarshal(msg.Value, &evt))
		require.Equal(t, fmt.Sprintf("s%d@mergington.edu", i), evt.Email)
		require.Equal(t, evt.EventID, headerValue(msg, "event_id"))
	}
}

func TestFlushReportsWriterFailure(t *testing.T) {
	box := New(4)
	require.NoError(t, box.Record(context.Background(), enrolled("Art Studio", "x@mergington.edu", 1)))

	writer := &stubWriter{err: errors.New("broker unavailable")}
	d := NewDispatcher(box, writer, DispatcherConfig{Topic: "roster"}, zaptest.NewLogger(t))

	before := testutil.ToFloat64(failedCounter)
	err := d.Flush(context.Background())
	require.EqualError(t, err, "broker unavailable")
	require.Equal(t, before+1, testutil.ToFloat64(failedCounter))
	require.Equal(t, 0, box.Pending())
}

func TestStartDrainsOnShutdown(t *testing.T) {
	box := New(8)
	writer := &stubWriter{}
	d := NewDispatcher(box, writer, DispatcherConfig{
		Topic:        "roster",
		PollInterval: time.Hour,
		BatchSize:    4,
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	go d.Start(ctx)

	require.NoError(t, box.Record(context.Background(), enrolled("Gym Class", "late@mergington.edu", 3)))
	cancel()
	d.Wait()

	msgs := writer.snapshot()
	require.Len(t, msgs, 1)
	require.Equal(t, "Gym Class", string(msgs[0].Key))
}

func TestLogWriterAcceptsMessages(t *testing.T) {
	w := LogWriter{Logger: zaptest.NewLogger(t)}
	require.NoError(t, w.WriteMessages(context.Background(), "roster", kafka.Message{Key: []byte("k"), Value: []byte("{}")}))
	require.NoError(t, LogWriter{}.WriteMessages(context.Background(), "roster"))
	require.NoError(t, w.Close())
}
