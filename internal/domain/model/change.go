package model

import "time"

// ChangeKind identifies the roster mutation that produced a RosterChange.
type ChangeKind string

// Roster change kinds.
const (
	ChangeSignup     ChangeKind = "signup"
	ChangeUnregister ChangeKind = "unregister"
)

// RosterChange describes a successful signup or unregistration.
type RosterChange struct {
	ID              string     // uuid assigned when the change is published
	Kind            ChangeKind // signup or unregister
	Activity        string     // activity name
	Email           string     // participant email
	Participants    int        // roster size after the change
	MaxParticipants int        // activity capacity
	At              time.Time  // when the registry applied the change
}
