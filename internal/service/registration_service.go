// Package service holds the registration workflow: the rules deciding
// whether a user may join or leave an event, and the side effects of doing so.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/notifications"
	"github.com/geocoder89/eventmanager/internal/repo"
)

const tracerName = "github.com/geocoder89/eventmanager/internal/service"

// Metrics receives one outcome per register/unregister call.
type Metrics interface {
	ObserveRegistration(op, result string)
}

type RegistrationService struct {
	store    repo.RegistrationStore
	notifier notifications.Notifier
	log      *slog.Logger
	tracer   trace.Tracer
	metrics  Metrics
	now      func() time.Time
}

type Option func(*RegistrationService)

func WithMetrics(m Metrics) Option {
	return func(s *RegistrationService) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *RegistrationService) { s.tracer = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *RegistrationService) { s.now = now }
}

func NewRegistrationService(store repo.RegistrationStore, notifier notifications.Notifier, log *slog.Logger, opts ...Option) *RegistrationService {
	s := &RegistrationService{
		store:    store,
		notifier: notifier,
		log:      log,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Register adds actor to e. A registration that already exists, whether seen
// up front or lost to a concurrent insert, is apperr.ErrAlreadyRegistered.
func (s *RegistrationService) Register(ctx context.Context, actor user.User, e event.Event) (registration.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.register", trace.WithAttributes(
		attribute.String("event.id", e.ID),
		attribute.String("user.id", actor.ID),
	))
	defer span.End()

	_, err := s.store.Find(ctx, actor.ID, e.ID)
	switch {
	case err == nil:
		s.observe("register", "already_registered")
		return registration.Registration{}, apperr.ErrAlreadyRegistered
	case !errors.Is(err, registration.ErrNotFound):
		return registration.Registration{}, s.fail(span, "register", fmt.Errorf("find registration: %w", err))
	}

	reg := registration.New(actor.ID, e.ID, s.now())

	if err := s.store.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, registration.ErrDuplicate):
			s.log.InfoContext(ctx, "registration.duplicate",
				"event_id", e.ID,
				"user_id", actor.ID,
			)
			s.observe("register", "already_registered")
			return registration.Registration{}, apperr.ErrAlreadyRegistered
		case errors.Is(err, event.ErrNotFound):
			s.observe("register", "event_not_found")
			return registration.Registration{}, apperr.ErrEventNotFound
		default:
			return registration.Registration{}, s.fail(span, "register", fmt.Errorf("create registration: %w", err))
		}
	}

	s.log.InfoContext(ctx, "registration.created",
		"registration_id", reg.ID,
		"event_id", e.ID,
		"user_id", actor.ID,
	)
	s.observe("register", "ok")
	span.SetAttributes(attribute.String("registration.id", reg.ID))

	s.notify(ctx, notifications.KindRegistrationConfirmation, noticeFor(reg.ID, actor, e), func(ctx context.Context, n notifications.Notice) error {
		return s.notifier.SendRegistrationConfirmation(ctx, n)
	})

	return reg, nil
}

// Unregister removes actor from e. It never mutates the store when actor
// holds no registration.
func (s *RegistrationService) Unregister(ctx context.Context, actor user.User, e event.Event) error {
	ctx, span := s.tracer.Start(ctx, "registration.unregister", trace.WithAttributes(
		attribute.String("event.id", e.ID),
		attribute.String("user.id", actor.ID),
	))
	defer span.End()

	reg, err := s.store.Find(ctx, actor.ID, e.ID)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			s.observe("unregister", "not_registered")
			return apperr.ErrNotRegistered
		}
		return s.fail(span, "unregister", fmt.Errorf("find registration: %w", err))
	}

	if err := s.store.Delete(ctx, reg.ID); err != nil {
		// a concurrent unregister got there first
		if errors.Is(err, registration.ErrNotFound) {
			s.observe("unregister", "not_registered")
			return apperr.ErrNotRegistered
		}
		return s.fail(span, "unregister", fmt.Errorf("delete registration: %w", err))
	}

	s.log.InfoContext(ctx, "registration.deleted",
		"registration_id", reg.ID,
		"event_id", e.ID,
		"user_id", actor.ID,
	)
	s.observe("unregister", "ok")

	s.notify(ctx, notifications.KindUnregistrationNotice, noticeFor(reg.ID, actor, e), func(ctx context.Context, n notifications.Notice) error {
		return s.notifier.SendUnregistrationNotice(ctx, n)
	})

	return nil
}

// ListParticipants returns e's registrations, most recent first.
func (s *RegistrationService) ListParticipants(ctx context.Context, e event.Event) ([]registration.Participant, error) {
	ctx, span := s.tracer.Start(ctx, "registration.list_participants", trace.WithAttributes(
		attribute.String("event.id", e.ID),
	))
	defer span.End()

	out, err := s.store.ListParticipants(ctx, e.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list participants")
		return nil, fmt.Errorf("list participants: %w", err)
	}
	span.SetAttributes(attribute.Int("participants.count", len(out)))
	return out, nil
}

// IsRegistered reports whether userID holds a registration for e.
func (s *RegistrationService) IsRegistered(ctx context.Context, userID string, e event.Event) (bool, error) {
	if userID == "" {
		return false, nil
	}

	_, err := s.store.Find(ctx, userID, e.ID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, registration.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find registration: %w", err)
	}
}

// notify runs after the store change is durable. Its failure is logged and
// never reaches the caller.
func (s *RegistrationService) notify(ctx context.Context, kind string, n notifications.Notice, send func(context.Context, notifications.Notice) error) {
	if s.notifier == nil {
		return
	}

	// the registration already happened; a client hanging up must not cancel the email
	ctx = context.WithoutCancel(ctx)

	if err := send(ctx, n); err != nil {
		s.log.WarnContext(ctx, "notification.failed",
			"kind", kind,
			"registration_id", n.RegistrationID,
			"event_id", n.EventID,
			"err", err,
		)
	}
}

func (s *RegistrationService) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	s.observe(op, "error")
	return err
}

func (s *RegistrationService) observe(op, result string) {
	if s.metrics != nil {
		s.metrics.ObserveRegistration(op, result)
	}
}

func noticeFor(registrationID string, actor user.User, e event.Event) notifications.Notice {
	n := notifications.Notice{
		RegistrationID: registrationID,
		Username:       actor.Username,
		Email:          actor.Email,
		EventID:        e.ID,
		EventTitle:     e.Title,
		EventDate:      e.Date,
	}
	if e.Location != nil {
		n.Location = *e.Location
	}
	return n
}
