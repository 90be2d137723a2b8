package registration

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Registration records one user's attendance at one event. The pair
// (UserID, EventID) is unique in every store.
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Participant is a registration joined with the registrant's public fields.
type Participant struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

var (
	ErrNotFound = errors.New("registration not found")
	// ErrDuplicate is returned by stores when the (user, event) uniqueness
	// constraint rejects an insert.
	ErrDuplicate = errors.New("registration already exists")
)

// A factory to build a Registration for a user and event

func New(userID, eventID string, now time.Time) Registration {
	return Registration{
		ID:           uuid.NewString(),
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: now.UTC(),
	}
}
