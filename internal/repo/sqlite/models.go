package sqlite

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/domain/user"
)

// Timestamps are stored as unix milliseconds.

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string `bun:"id,pk"`
	Username     string `bun:"username,notnull"`
	Email        string `bun:"email,notnull"`
	PasswordHash string `bun:"password_hash,notnull"`
	DateJoined   int64  `bun:"date_joined,notnull"`
}

type eventModel struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          string  `bun:"id,pk"`
	Title       string  `bun:"title,notnull"`
	Description string  `bun:"description,notnull"`
	Date        int64   `bun:"date,notnull"`
	Location    *string `bun:"location"`
	OrganizerID string  `bun:"organizer_id,notnull"`
	CreatedAt   int64   `bun:"created_at,notnull"`
	UpdatedAt   int64   `bun:"updated_at,notnull"`
}

// eventRow is an event joined with its organizer and registration count.
type eventRow struct {
	eventModel `bun:",extend"`

	OrganizerUsername string `bun:"organizer_username,scanonly"`
	OrganizerEmail    string `bun:"organizer_email,scanonly"`
	ParticipantsCount int    `bun:"participants_count,scanonly"`
}

type registrationModel struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID           string `bun:"id,pk"`
	UserID       string `bun:"user_id,notnull"`
	EventID      string `bun:"event_id,notnull"`
	RegisteredAt int64  `bun:"registered_at,notnull"`
}

type participantRow struct {
	ID           string `bun:"id"`
	UserID       string `bun:"user_id"`
	Username     string `bun:"username"`
	Email        string `bun:"email"`
	RegisteredAt int64  `bun:"registered_at"`
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func userToModel(u user.User) userModel {
	return userModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DateJoined:   toMillis(u.DateJoined),
	}
}

func (m userModel) toDomain() user.User {
	return user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DateJoined:   fromMillis(m.DateJoined),
	}
}

func eventToModel(e event.Event) eventModel {
	return eventModel{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        toMillis(e.Date),
		Location:    e.Location,
		OrganizerID: e.OrganizerID,
		CreatedAt:   toMillis(e.CreatedAt),
		UpdatedAt:   toMillis(e.UpdatedAt),
	}
}

func (r eventRow) toDomain() event.Event {
	return event.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        fromMillis(r.Date),
		Location:    r.Location,
		OrganizerID: r.OrganizerID,
		Organizer: user.Summary{
			ID:       r.OrganizerID,
			Username: r.OrganizerUsername,
			Email:    r.OrganizerEmail,
		},
		ParticipantsCount: r.ParticipantsCount,
		CreatedAt:         fromMillis(r.CreatedAt),
		UpdatedAt:         fromMillis(r.UpdatedAt),
	}
}

func registrationToModel(reg registration.Registration) registrationModel {
	return registrationModel{
		ID:           reg.ID,
		UserID:       reg.UserID,
		EventID:      reg.EventID,
		RegisteredAt: toMillis(reg.RegisteredAt),
	}
}

func (m registrationModel) toDomain() registration.Registration {
	return registration.Registration{
		ID:           m.ID,
		UserID:       m.UserID,
		EventID:      m.EventID,
		RegisteredAt: fromMillis(m.RegisteredAt),
	}
}

func (p participantRow) toDomain() registration.Participant {
	return registration.Participant{
		ID:           p.ID,
		UserID:       p.UserID,
		Username:     p.Username,
		Email:        p.Email,
		RegisteredAt: fromMillis(p.RegisteredAt),
	}
}
