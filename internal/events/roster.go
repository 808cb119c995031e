// Package events defines the roster event payloads published to Kafka.
package events

import "time"

// Event types carried in the event_type message header.
const (
	TypeParticipantEnrolled  = "participant.enrolled"
	TypeParticipantWithdrawn = "participant.withdrawn"
)

// ParticipantEnrolled is emitted when a student signs up for an activity.
type ParticipantEnrolled struct {
	EventID    string    `json:"event_id"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	RosterSize int       `json:"roster_size"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ParticipantWithdrawn is emitted when a student is removed from an activity.
type ParticipantWithdrawn struct {
	EventID    string    `json:"event_id"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	RosterSize int       `json:"roster_size"`
	OccurredAt time.Time `json:"occurred_at"`
}
