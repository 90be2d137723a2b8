// Package repo declares the storage contracts shared by the postgres and
// sqlite backends, plus the query helpers both of them use.
package repo

import (
	"context"
	"strings"

	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/domain/user"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type EventStore interface {
	Create(ctx context.Context, e event.Event) error
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, int, error)
	Update(ctx context.Context, e event.Event) error
	Delete(ctx context.Context, id string) error
}

// RegistrationStore must reject a second row for the same (user, event)
// pair with registration.ErrDuplicate, whatever the interleaving.
type RegistrationStore interface {
	Find(ctx context.Context, userID, eventID string) (registration.Registration, error)
	Create(ctx context.Context, reg registration.Registration) error
	Delete(ctx context.Context, id string) error
	ListParticipants(ctx context.Context, eventID string) ([]registration.Participant, error)
}

// Stores bundles one backend.
type Stores struct {
	Users         UserStore
	Events        EventStore
	Registrations RegistrationStore
	Ping          func(ctx context.Context) error
	Close         func() error
}

// ContainsPattern turns a user supplied substring into a LIKE pattern,
// escaping wildcards with a backslash.
func ContainsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// OrderBy maps an ordering to a column and direction. Ties break on id so
// page boundaries are stable.
func OrderBy(o event.Ordering) (column string, desc bool) {
	switch o {
	case event.OrderDateAsc:
		return "date", false
	case event.OrderCreatedAtAsc:
		return "created_at", false
	case event.OrderCreatedAtDesc:
		return "created_at", true
	case event.OrderTitleAsc:
		return "title", false
	case event.OrderTitleDesc:
		return "title", true
	default:
		return "date", true
	}
}
