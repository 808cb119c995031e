package domain

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultEmailDomain is the organisational domain students sign up with.
const DefaultEmailDomain = "mergington.edu"

// Confirmation describes a successful roster change.
type Confirmation struct {
	Activity   string
	Email      string
	RosterSize int
	Message    string
}

// CommitFunc observes a roster change while the registry lock is still held,
// so successive calls see roster sizes in commit order. It must not block or
// call back into the registry.
type CommitFunc func(Confirmation)

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithEmailDomain overrides the domain enforced on signup.
func WithEmailDomain(domain string) RegistryOption {
	return func(r *Registry) {
		if d := strings.TrimPrefix(strings.TrimSpace(domain), "@"); d != "" {
			r.emailDomain = d
		}
	}
}

// Registry holds every activity and its roster in memory. The set of
// activities is fixed at construction; only rosters change.
type Registry struct {
	mu          sync.RWMutex
	emailDomain string
	order       []string
	activities  map[string]*Activity
}

// NewRegistry builds a registry from a validated seed. The seed is copied.
func NewRegistry(seed []Activity, opts ...RegistryOption) (*Registry, error) {
	if err := ValidateActivities(seed); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	r := &Registry{
		emailDomain: DefaultEmailDomain,
		order:       make([]string, 0, len(seed)),
		activities:  make(map[string]*Activity, len(seed)),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, activity := range seed {
		stored := activity.clone()
		r.order = append(r.order, stored.Name)
		r.activities[stored.Name] = &stored
	}
	return r, nil
}

// EmailDomain returns the domain enforced on signup.
func (r *Registry) EmailDomain() string {
	return r.emailDomain
}

// List returns a deep copy of every activity in seed order.
func (r *Registry) List() Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := Catalog{Activities: make([]Activity, 0, len(r.order))}
	for _, name := range r.order {
		out.Activities = append(out.Activities, r.activities[name].clone())
	}
	return out
}

// Enroll appends email to the roster of activityName. Checks run in a fixed
// order: domain, existence, duplicate, capacity. onCommit runs after a
// successful append, before the lock is released.
func (r *Registry) Enroll(activityName, email string, onCommit ...CommitFunc) (Confirmation, error) {
	if !strings.HasSuffix(email, "@"+r.emailDomain) {
		return Confirmation{}, invalidDomain(r.emailDomain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[activityName]
	if !ok {
		return Confirmation{}, ErrActivityNotFound
	}
	if activity.HasParticipant(email) {
		return Confirmation{}, ErrAlreadyEnrolled
	}
	if len(activity.Participants) >= activity.MaxParticipants {
		return Confirmation{}, ErrAtCapacity
	}

	activity.Participants = append(activity.Participants, email)
	confirmation := Confirmation{
		Activity:   activityName,
		Email:      email,
		RosterSize: len(activity.Participants),
		Message:    fmt.Sprintf("Signed up %s for %s", email, activityName),
	}
	notify(confirmation, onCommit)
	return confirmation, nil
}

// Withdraw removes email from the roster of activityName, keeping the order
// of the remaining participants. onCommit runs as for Enroll.
func (r *Registry) Withdraw(activityName, email string, onCommit ...CommitFunc) (Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[activityName]
	if !ok {
		return Confirmation{}, ErrActivityNotFound
	}
	idx := indexOf(activity.Participants, email)
	if idx < 0 {
		return Confirmation{}, ErrParticipantNotFound
	}

	remaining := make([]string, 0, len(activity.Participants)-1)
	remaining = append(remaining, activity.Participants[:idx]...)
	remaining = append(remaining, activity.Participants[idx+1:]...)
	activity.Participants = remaining

	confirmation := Confirmation{
		Activity:   activityName,
		Email:      email,
		RosterSize: len(activity.Participants),
		Message:    fmt.Sprintf("Removed %s from %s", email, activityName),
	}
	notify(confirmation, onCommit)
	return confirmation, nil
}

func notify(confirmation Confirmation, hooks []CommitFunc) {
	for _, hook := range hooks {
		if hook != nil {
			hook(confirmation)
		}
	}
}
