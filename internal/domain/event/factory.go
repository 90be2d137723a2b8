package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateEventRequest, organizerID string, now time.Time) Event {
	now = now.UTC()

	return Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        req.Date.UTC(),
		Location:    normalizeLocation(req.Location),
		OrganizerID: organizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyUpdate replaces the required fields. Organizer is never touched and an
// omitted location is left as stored.
func ApplyUpdate(e Event, req UpdateEventRequest, now time.Time) Event {
	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Date = req.Date.UTC()
	if req.Location != nil {
		e.Location = normalizeLocation(req.Location)
	}
	e.UpdatedAt = now.UTC()
	return e
}

// ApplyPatch overwrites only the fields present in req.
func ApplyPatch(e Event, req PatchEventRequest, now time.Time) Event {
	if req.Title != nil {
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Date != nil {
		e.Date = req.Date.UTC()
	}
	if req.Location != nil {
		e.Location = normalizeLocation(req.Location)
	}
	e.UpdatedAt = now.UTC()
	return e
}

func normalizeLocation(loc *string) *string {
	if loc == nil {
		return nil
	}
	v := strings.TrimSpace(*loc)
	if v == "" {
		return nil
	}
	return &v
}
