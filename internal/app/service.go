// Package service provides the activity service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	changequeue "github.com/okian/mergington/internal/adapters/mq/queue"
	changeworker "github.com/okian/mergington/internal/adapters/mq/worker"
	repository "github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
	"github.com/okian/mergington/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultChangeQueueSize = 1024
	defaultChangeWorkers   = 2
)

// Rejection reasons used for the rejected mutation counter.
const (
	reasonActivityNotFound = "activity_not_found"
	reasonAlreadySignedUp  = "already_signed_up"
	reasonActivityFull     = "activity_full"
	reasonNotRegistered    = "not_registered"
	reasonInternal         = "internal"
)

// Service owns the activity registry and the roster change feed.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry repository.Registry
	changes  *changequeue.InMemoryQueue
	pool     *changeworker.Pool

	// Configuration
	catalogue       map[string]model.Activity
	changeQueueSize int
	changeWorkers   int

	// State
	started bool

	tracer trace.Tracer
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalogue seeds the registry with activities instead of the built-in catalogue.
func WithCatalogue(activities map[string]model.Activity) Option {
	return func(s *Service) {
		if len(activities) > 0 {
			s.catalogue = activities
		}
	}
}

// WithChangeQueueSize sets the bound of the roster change queue.
func WithChangeQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.changeQueueSize = size
		}
	}
}

// WithChangeWorkers sets the number of roster change workers.
func WithChangeWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.changeWorkers = count
		}
	}
}

// WithTracer sets the tracer used for service spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs a Service. The registry is ready immediately; the change
// feed starts with Start.
func New(opts ...Option) *Service {
	s := &Service{
		changeQueueSize: defaultChangeQueueSize,
		changeWorkers:   defaultChangeWorkers,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.tracer == nil {
		s.tracer = tracing.Tracer()
	}

	var registryOpts []repository.Option
	if s.catalogue != nil {
		registryOpts = append(registryOpts, repository.WithActivities(s.catalogue))
	}
	s.registry = repository.NewInMemoryRegistry(registryOpts...)

	return s
}

// Start launches the roster change workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Named("activities")
	}

	s.logger.Info(ctx, "starting activities service...")

	s.changes = changequeue.NewInMemoryQueue(changequeue.WithCapacity(s.changeQueueSize))
	s.pool = changeworker.NewPool(s.changeWorkers, s.changes, &changeRecorder{logger: s.logger})
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "activities service started",
		logger.Int("activities", s.registry.Count(ctx)),
		logger.Int("participants", s.registry.Participants(ctx)),
		logger.Int("changeWorkers", s.pool.Size()),
		logger.Int("changeQueueSize", s.changeQueueSize),
	)

	return nil
}

// Stop drains the change feed and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping activities service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "change workers did not stop cleanly", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "activities service stopped")
}

// List returns every activity keyed by name.
func (s *Service) List(ctx context.Context) map[string]model.Activity {
	_, span := s.tracer.Start(ctx, "activities.list")
	defer span.End()

	activities := s.registry.List(ctx)
	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return activities
}

// Signup enrols email in the named activity and returns the confirmation message.
func (s *Service) Signup(ctx context.Context, name, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "activities.signup", trace.WithAttributes(
		attribute.String("activity.name", name),
		attribute.String("participant.email", email),
	))
	defer span.End()

	a, err := s.registry.Signup(ctx, name, email)
	if err != nil {
		s.reject(ctx, span, "signup", name, email, err)
		return "", err
	}

	metrics.RecordSignup(name)
	s.publish(ctx, model.ChangeSignup, name, email, a)
	s.debug(ctx, "student signed up", name, email, a)
	return fmt.Sprintf("Signed up %s for %s", email, name), nil
}

// Unregister removes email from the named activity and returns the confirmation message.
func (s *Service) Unregister(ctx context.Context, name, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "activities.unregister", trace.WithAttributes(
		attribute.String("activity.name", name),
		attribute.String("participant.email", email),
	))
	defer span.End()

	a, err := s.registry.Unregister(ctx, name, email)
	if err != nil {
		s.reject(ctx, span, "unregister", name, email, err)
		return "", err
	}

	metrics.RecordUnregistration(name)
	s.publish(ctx, model.ChangeUnregister, name, email, a)
	s.debug(ctx, "student unregistered", name, email, a)
	return fmt.Sprintf("Unregistered %s from %s", email, name), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"activities":   s.registry.Count(ctx),
		"participants": s.registry.Participants(ctx),
		"workerCount":  0,
	}

	if s.started {
		stats["changeQueueLength"] = s.changes.Len(ctx)
		stats["workerCount"] = s.pool.Size()
	}

	return stats
}

// publish hands a roster change to the workers. A full or closed queue
// drops the change; the mutation itself has already succeeded.
func (s *Service) publish(ctx context.Context, kind model.ChangeKind, name, email string, a model.Activity) { //nolint:gocritic // hugeParam: snapshot returned by the registry
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return
	}

	c := model.RosterChange{
		ID:              uuid.NewString(),
		Kind:            kind,
		Activity:        name,
		Email:           email,
		Participants:    len(a.Participants),
		MaxParticipants: a.MaxParticipants,
		At:              time.Now().UTC(),
	}
	if !s.changes.Enqueue(ctx, c) {
		s.logger.Warn(ctx, "roster change dropped",
			logger.String("changeID", c.ID),
			logger.String("kind", string(kind)),
			logger.String("activity", name),
		)
	}
}

func (s *Service) reject(ctx context.Context, span trace.Span, operation, name, email string, err error) {
	reason := rejectionReason(err)
	metrics.RecordRejectedMutation(operation, reason)

	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	if l := s.log(); l != nil {
		l.Debug(ctx, operation+" rejected",
			logger.String("activity", name),
			logger.String("email", email),
			logger.String("reason", reason),
		)
	}
}

func (s *Service) debug(ctx context.Context, msg, name, email string, a model.Activity) { //nolint:gocritic // hugeParam: snapshot returned by the registry
	if l := s.log(); l != nil {
		l.Debug(ctx, msg,
			logger.String("activity", name),
			logger.String("email", email),
			logger.Int("participants", len(a.Participants)),
			logger.Int("spotsLeft", a.SpotsLeft()),
		)
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrActivityNotFound):
		return reasonActivityNotFound
	case errors.Is(err, repository.ErrAlreadySignedUp):
		return reasonAlreadySignedUp
	case errors.Is(err, repository.ErrActivityFull):
		return reasonActivityFull
	case errors.Is(err, repository.ErrNotRegistered):
		return reasonNotRegistered
	default:
		return reasonInternal
	}
}

// changeRecorder is the worker side of the roster change feed.
type changeRecorder struct {
	logger logger.Logger
}

func (r *changeRecorder) Apply(ctx context.Context, c changequeue.Change) error { //nolint:gocritic // hugeParam: mirrors worker.Recorder
	if c.Activity == "" {
		return fmt.Errorf("roster change %s has no activity", c.ID)
	}
	r.logger.Debug(ctx, "roster change applied",
		logger.String("changeID", c.ID),
		logger.String("kind", string(c.Kind)),
		logger.String("activity", c.Activity),
		logger.String("email", c.Email),
		logger.Int("participants", c.Participants),
		logger.Int("maxParticipants", c.MaxParticipants),
	)
	return nil
}
