// Package outbox buffers roster events in memory and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/events"
)

// ErrOutboxFull is returned by Record when the buffer has no free slot.
var ErrOutboxFull = errors.New("outbox is full")

// Message is a serialised roster event awaiting delivery.
type Message struct {
	EventID   string
	EventType string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

// Outbox is a bounded in-memory queue of roster events. It implements
// domain.EventRecorder.
type Outbox struct {
	queue chan Message
}

// New creates an Outbox holding at most size pending events.
func New(size int) *Outbox {
	if size <= 0 {
		size = 1
	}
	return &Outbox{queue: make(chan Message, size)}
}

// Record serialises change and enqueues it without blocking.
func (o *Outbox) Record(ctx context.Context, change domain.RosterChange) error {
	msg, err := toMessage(change)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case o.queue <- msg:
		recordedCounter.Inc()
		pendingGauge.Set(float64(len(o.queue)))
		return nil
	default:
		droppedCounter.Inc()
		return ErrOutboxFull
	}
}

// Pending reports the number of queued events.
func (o *Outbox) Pending() int {
	return len(o.queue)
}

// take removes up to max queued messages without blocking.
func (o *Outbox) take(max int) []Message {
	out := make([]Message, 0, max)
	for len(out) < max {
		select {
		case msg := <-o.queue:
			out = append(out, msg)
		default:
			pendingGauge.Set(float64(len(o.queue)))
			return out
		}
	}
	pendingGauge.Set(float64(len(o.queue)))
	return out
}

func toMessage(change domain.RosterChange) (Message, error) {
	eventID := uuid.NewString()

	var (
		payload   any
		eventType string
	)
	switch change.Type {
	case domain.RosterChangeEnrolled:
		eventType = events.TypeParticipantEnrolled
		payload = events.ParticipantEnrolled{
			EventID:    eventID,
			Activity:   change.Activity,
			Email:      change.Email,
			RosterSize: change.RosterSize,
			OccurredAt: change.OccurredAt,
		}
	case domain.RosterChangeWithdrawn:
		eventType = events.TypeParticipantWithdrawn
		payload = events.ParticipantWithdrawn{
			EventID:    eventID,
			Activity:   change.Activity,
			Email:      change.Email,
			RosterSize: change.RosterSize,
			OccurredAt: change.OccurredAt,
		}
	default:
		return Message{}, fmt.Errorf("unsupported roster change type %q", change.Type)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s: %w", eventType, err)
	}

	createdAt := change.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return Message{
		EventID:   eventID,
		EventType: eventType,
		Key:       change.Activity,
		Payload:   body,
		CreatedAt: createdAt,
	}, nil
}
