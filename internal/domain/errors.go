package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the caller-facing failures of registry operations.
type ErrorKind string

const (
	KindInvalidDomain       ErrorKind = "invalid_domain"
	KindActivityNotFound    ErrorKind = "activity_not_found"
	KindAlreadyEnrolled     ErrorKind = "already_enrolled"
	KindAtCapacity          ErrorKind = "at_capacity"
	KindParticipantNotFound ErrorKind = "participant_not_found"
)

// Error is returned by every failing registry operation.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is
// regardless of the detail text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	// ErrInvalidDomain is returned when an email is outside the organisational domain.
	ErrInvalidDomain = &Error{Kind: KindInvalidDomain, Detail: "email domain not allowed"}
	// ErrActivityNotFound is returned when no activity has the requested name.
	ErrActivityNotFound = &Error{Kind: KindActivityNotFound, Detail: "Activity not found"}
	// ErrAlreadyEnrolled is returned when the email is already on the roster.
	ErrAlreadyEnrolled = &Error{Kind: KindAlreadyEnrolled, Detail: "Student already signed up for this activity"}
	// ErrAtCapacity is returned when the roster has reached max participants.
	ErrAtCapacity = &Error{Kind: KindAtCapacity, Detail: "Activity is full"}
	// ErrParticipantNotFound is returned when withdrawing an email that is not on the roster.
	ErrParticipantNotFound = &Error{Kind: KindParticipantNotFound, Detail: "Participant not found"}
)

func invalidDomain(domain string) *Error {
	return &Error{
		Kind:   KindInvalidDomain,
		Detail: fmt.Sprintf("Only @%s email addresses are allowed", domain),
	}
}

// KindOf extracts the ErrorKind of err, if it is a registry error.
func KindOf(err error) (ErrorKind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}
