// Package domain holds the activity registry and the signup workflows built on it.
package domain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"example.com/mergington/internal/observability"
)

// RosterChangeType names the kind of roster mutation.
type RosterChangeType string

const (
	RosterChangeEnrolled  RosterChangeType = "participant.enrolled"
	RosterChangeWithdrawn RosterChangeType = "participant.withdrawn"
)

// RosterChange describes a committed roster mutation.
type RosterChange struct {
	Type       RosterChangeType
	Activity   string
	Email      string
	RosterSize int
	OccurredAt time.Time
}

// EventRecorder receives committed roster changes for downstream delivery.
// Record is called while the registry lock is held and must not block.
type EventRecorder interface {
	Record(ctx context.Context, change RosterChange) error
}

// NoopRecorder discards roster changes.
type NoopRecorder struct{}

// Record performs no action.
func (NoopRecorder) Record(context.Context, RosterChange) error { return nil }

// Service orchestrates signup workflows over the registry.
type Service struct {
	registry *Registry
	recorder EventRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs a Service and publishes the initial roster sizes.
func NewService(registry *Registry, recorder EventRecorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, activity := range registry.List().Activities {
		observability.SetRosterSize(activity.Name, len(activity.Participants))
	}
	return &Service{
		registry: registry,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EmailDomain returns the domain enforced on signup.
func (s *Service) EmailDomain() string {
	return s.registry.EmailDomain()
}

// ListActivities returns every activity with its current roster.
func (s *Service) ListActivities(ctx context.Context) Catalog {
	return s.registry.List()
}

// Signup enrolls email in activityName.
func (s *Service) Signup(ctx context.Context, activityName, email string) (Confirmation, error) {
	publish, recErr := s.publisher(ctx, RosterChangeEnrolled)
	confirmation, err := s.registry.Enroll(activityName, email, publish)
	s.finish(observability.OperationSignup, confirmation, err, *recErr,
		zap.String("activity", activityName), zap.String("email", email))
	return confirmation, err
}

// Unregister withdraws email from activityName.
func (s *Service) Unregister(ctx context.Context, activityName, email string) (Confirmation, error) {
	publish, recErr := s.publisher(ctx, RosterChangeWithdrawn)
	confirmation, err := s.registry.Withdraw(activityName, email, publish)
	s.finish(observability.OperationUnregister, confirmation, err, *recErr,
		zap.String("activity", activityName), zap.String("email", email))
	return confirmation, err
}

// publisher returns the commit hook that updates the roster gauge and records
// the change. It runs under the registry lock, so gauge updates and recorded
// events follow commit order. The recorder's error is stored in the returned
// pointer once the hook has run.
func (s *Service) publisher(ctx context.Context, changeType RosterChangeType) (CommitFunc, *error) {
	var recErr error
	return func(confirmation Confirmation) {
		observability.SetRosterSize(confirmation.Activity, confirmation.RosterSize)
		recErr = s.recorder.Record(ctx, RosterChange{
			Type:       changeType,
			Activity:   confirmation.Activity,
			Email:      confirmation.Email,
			RosterSize: confirmation.RosterSize,
			OccurredAt: s.now(),
		})
	}, &recErr
}

func (s *Service) finish(operation string, confirmation Confirmation, err, recErr error, fields ...zap.Field) {
	if err != nil {
		outcome := "error"
		if kind, ok := KindOf(err); ok {
			outcome = string(kind)
		}
		observability.RecordOperation(operation, outcome)
		s.logger.Debug("roster change rejected", append(fields, zap.String("operation", operation), zap.Error(err))...)
		return
	}

	observability.RecordOperation(operation, observability.OutcomeOK)
	s.logger.Info("roster changed", append(fields,
		zap.String("operation", operation),
		zap.Int("roster_size", confirmation.RosterSize))...)

	// The roster is already committed; a lost event must not fail the request.
	if recErr != nil {
		s.logger.Error("failed to record roster change", append(fields, zap.Error(recErr))...)
	}
}
