package repository

import "github.com/okian/mergington/internal/domain/model"

// Option applies a configuration option to the InMemoryRegistry.
type Option func(*InMemoryRegistry)

// WithActivities seeds the registry. The map is copied.
func WithActivities(activities map[string]model.Activity) Option {
	return func(r *InMemoryRegistry) {
		if activities == nil {
			return
		}
		r.activities = make(map[string]*model.Activity, len(activities))
		for name, a := range activities {
			c := a.Clone()
			r.activities[name] = &c
		}
	}
}
