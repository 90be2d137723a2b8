package event

import (
	"errors"
	"time"

	"github.com/geocoder89/eventmanager/internal/domain/user"
)

type Event struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Date              time.Time    `json:"date"`
	Location          *string      `json:"location"`
	OrganizerID       string       `json:"-"`
	Organizer         user.Summary `json:"organizer"`
	ParticipantsCount int          `json:"participants_count"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// IsUpcoming reports whether the event starts after now.
func (e Event) IsUpcoming(now time.Time) bool {
	return e.Date.After(now)
}

var ErrNotFound = errors.New("event not found")

type Ordering string

const (
	OrderDateDesc      Ordering = "-date"
	OrderDateAsc       Ordering = "date"
	OrderCreatedAtDesc Ordering = "-created_at"
	OrderCreatedAtAsc  Ordering = "created_at"
	OrderTitleDesc     Ordering = "-title"
	OrderTitleAsc      Ordering = "title"
)

// ParseOrdering returns the default ordering for unknown values.
func ParseOrdering(raw string) Ordering {
	switch o := Ordering(raw); o {
	case OrderDateAsc, OrderDateDesc, OrderCreatedAtAsc, OrderCreatedAtDesc, OrderTitleAsc, OrderTitleDesc:
		return o
	default:
		return OrderDateDesc
	}
}

// with pointers if optional, it will be nil
type ListEventsFilter struct {
	Title       *string
	Location    *string
	Search      *string
	DateFrom    *time.Time
	DateTo      *time.Time
	StartsAfter *time.Time
	OrganizerID *string
	Ordering    Ordering
	Limit       int
	Offset      int
}

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,notblank,max=200"`
	Description string    `json:"description" binding:"required,notblank"`
	Date        time.Time `json:"date" binding:"required"`
	Location    *string   `json:"location" binding:"omitempty,max=300"`
}

// a full update payload used by PUT. A nil Location keeps the stored one;
// send "" to clear it.
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required,notblank,max=200"`
	Description string    `json:"description" binding:"required,notblank"`
	Date        time.Time `json:"date" binding:"required"`
	Location    *string   `json:"location" binding:"omitempty,max=300"`
}

// PatchEventRequest carries only the fields the client sent.
type PatchEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string    `json:"description" binding:"omitempty,notblank"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location" binding:"omitempty,max=300"`
}
