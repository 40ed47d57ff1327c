// Package repository holds the activity registry and its errors.
package repository

import (
	"context"

	"github.com/okian/mergington/internal/domain/model"
)

// Registry provides read and roster-mutation access to activities.
// Activities are fixed at construction; only rosters change.
type Registry interface {
	// List returns a snapshot of every activity keyed by name.
	// The caller owns the returned values.
	List(ctx context.Context) map[string]model.Activity

	// Get returns a snapshot of one activity.
	// Returns ErrActivityNotFound if the name is unknown.
	Get(ctx context.Context, name string) (model.Activity, error)

	// Signup adds email to the activity roster and returns the updated activity.
	// Returns ErrActivityNotFound, ErrAlreadySignedUp or ErrActivityFull, checked in that order.
	Signup(ctx context.Context, name, email string) (model.Activity, error)

	// Unregister removes email from the activity roster and returns the updated activity.
	// Returns ErrActivityNotFound or ErrNotRegistered.
	Unregister(ctx context.Context, name, email string) (model.Activity, error)

	// Count returns the number of activities.
	Count(ctx context.Context) int

	// Participants returns the number of enrolments across all activities.
	Participants(ctx context.Context) int
}
