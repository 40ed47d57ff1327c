package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/mergington/internal/domain/catalogue"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/metrics"
)

// Registry operation names used for metrics labels.
const (
	opSignup     = "signup"
	opUnregister = "unregister"
	opList       = "list"
)

// InMemoryRegistry is a Registry kept in process memory.
// A single RWMutex serialises every check-and-mutate so the capacity and
// uniqueness invariants hold under concurrent requests.
type InMemoryRegistry struct {
	mu         sync.RWMutex
	activities map[string]*model.Activity
}

// NewInMemoryRegistry builds a registry seeded with the built-in catalogue
// unless WithActivities supplies another one.
func NewInMemoryRegistry(opts ...Option) *InMemoryRegistry {
	r := &InMemoryRegistry{}
	WithActivities(catalogue.Default())(r)
	for _, opt := range opts {
		opt(r)
	}

	for name, a := range r.activities {
		metrics.UpdateEnrolment(name, len(a.Participants), a.MaxParticipants)
	}
	metrics.UpdateTotals(len(r.activities), r.participantsLocked())
	return r
}

// List returns a deep copy of every activity.
func (r *InMemoryRegistry) List(_ context.Context) map[string]model.Activity {
	defer observe(opList, time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]model.Activity, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.Clone()
	}
	return out
}

// Get returns a copy of one activity.
func (r *InMemoryRegistry) Get(_ context.Context, name string) (model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return model.Activity{}, ErrActivityNotFound
	}
	return a.Clone(), nil
}

// Signup appends email to the roster of the named activity.
func (r *InMemoryRegistry) Signup(_ context.Context, name, email string) (model.Activity, error) {
	defer observe(opSignup, time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	switch {
	case !ok:
		return model.Activity{}, ErrActivityNotFound
	case a.HasParticipant(email):
		return model.Activity{}, ErrAlreadySignedUp
	case a.Full():
		return model.Activity{}, ErrActivityFull
	}

	a.Participants = append(a.Participants, email)
	r.publishLocked(name, a)
	return a.Clone(), nil
}

// Unregister removes email from the roster of the named activity.
func (r *InMemoryRegistry) Unregister(_ context.Context, name, email string) (model.Activity, error) {
	defer observe(opUnregister, time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		return model.Activity{}, ErrActivityNotFound
	}
	i := slices.Index(a.Participants, email)
	if i < 0 {
		return model.Activity{}, ErrNotRegistered
	}

	a.Participants = slices.Delete(a.Participants, i, i+1)
	r.publishLocked(name, a)
	return a.Clone(), nil
}

// Count returns the number of activities.
func (r *InMemoryRegistry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Participants returns the number of enrolments across all activities.
func (r *InMemoryRegistry) Participants(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.participantsLocked()
}

func (r *InMemoryRegistry) participantsLocked() int {
	n := 0
	for _, a := range r.activities {
		n += len(a.Participants)
	}
	return n
}

// publishLocked refreshes the enrolment gauges after a roster change.
func (r *InMemoryRegistry) publishLocked(name string, a *model.Activity) {
	metrics.UpdateEnrolment(name, len(a.Participants), a.MaxParticipants)
	metrics.UpdateTotals(len(r.activities), r.participantsLocked())
}

func observe(op string, start time.Time) {
	metrics.RecordRegistryOperation(op, float64(time.Since(start).Microseconds())/1000)
}
