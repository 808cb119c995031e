package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Activity is an extracurricular offering together with its current roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// SpotsLeft reports how many more students can sign up.
func (a Activity) SpotsLeft() int {
	left := a.MaxParticipants - len(a.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	return indexOf(a.Participants, email) >= 0
}

func (a Activity) clone() Activity {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	a.Participants = participants
	return a
}

// Catalog is an ordered snapshot of every activity in the registry.
type Catalog struct {
	Activities []Activity
}

// Get returns the activity with the given name.
func (c Catalog) Get(name string) (Activity, bool) {
	for _, activity := range c.Activities {
		if activity.Name == name {
			return activity, true
		}
	}
	return Activity{}, false
}

// Names lists activity names in catalogue order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Activities))
	for _, activity := range c.Activities {
		names = append(names, activity.Name)
	}
	return names
}

// ValidateActivities checks a seed roster against the registry invariants.
func ValidateActivities(activities []Activity) error {
	if len(activities) == 0 {
		return errors.New("no activities defined")
	}
	seen := make(map[string]struct{}, len(activities))
	for _, activity := range activities {
		name := strings.TrimSpace(activity.Name)
		if name == "" {
			return errors.New("activity name is required")
		}
		if _, dup := seen[activity.Name]; dup {
			return fmt.Errorf("activity %q: duplicate name", activity.Name)
		}
		seen[activity.Name] = struct{}{}

		if activity.MaxParticipants <= 0 {
			return fmt.Errorf("activity %q: max_participants must be > 0", activity.Name)
		}
		if len(activity.Participants) > activity.MaxParticipants {
			return fmt.Errorf("activity %q: %d participants exceed capacity %d",
				activity.Name, len(activity.Participants), activity.MaxParticipants)
		}
		emails := make(map[string]struct{}, len(activity.Participants))
		for _, email := range activity.Participants {
			if _, dup := emails[email]; dup {
				return fmt.Errorf("activity %q: participant %s listed twice", activity.Name, email)
			}
			emails[email] = struct{}{}
		}
	}
	return nil
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}
	return -1
}
