package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/http/middlewares"
	"github.com/geocoder89/eventmanager/internal/utils"
)

type EventsStore interface {
	Create(ctx context.Context, e event.Event) error
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, int, error)
	Update(ctx context.Context, e event.Event) error
	Delete(ctx context.Context, id string) error
}

type RegistrationChecker interface {
	IsRegistered(ctx context.Context, userID string, e event.Event) (bool, error)
}

type EventsHandler struct {
	repo          EventsStore
	registrations RegistrationChecker
	now           func() time.Time
}

func NewEventsHandler(repo EventsStore, registrations RegistrationChecker) *EventsHandler {
	return &EventsHandler{repo: repo, registrations: registrations, now: time.Now}
}

type eventListItem struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Date              time.Time    `json:"date"`
	Location          *string      `json:"location"`
	Organizer         user.Summary `json:"organizer"`
	ParticipantsCount int          `json:"participants_count"`
	IsUpcoming        bool         `json:"is_upcoming"`
}

type eventDetail struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Date              time.Time    `json:"date"`
	Location          *string      `json:"location"`
	Organizer         user.Summary `json:"organizer"`
	ParticipantsCount int          `json:"participants_count"`
	IsUpcoming        bool         `json:"is_upcoming"`
	IsRegistered      bool         `json:"is_registered"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// eventWrite is the body returned by create and update.
type eventWrite struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    *string   `json:"location"`
}

type eventPage struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []eventListItem `json:"results"`
}

func toListItem(e event.Event, now time.Time) eventListItem {
	return eventListItem{
		ID:                e.ID,
		Title:             e.Title,
		Date:              e.Date,
		Location:          e.Location,
		Organizer:         e.Organizer,
		ParticipantsCount: e.ParticipantsCount,
		IsUpcoming:        e.IsUpcoming(now),
	}
}

func toWrite(e event.Event) eventWrite {
	return eventWrite{ID: e.ID, Title: e.Title, Description: e.Description, Date: e.Date, Location: e.Location}
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	now := h.now()

	filter, page, fieldErrs := parseListFilter(ctx.Request.URL.Query(), now)
	if fieldErrs != nil {
		RespondValidation(ctx, fieldErrs)
		return
	}
	if page.Number == 0 {
		RespondAppError(ctx, apperr.WithDetail(apperr.KindNotFound, "Invalid page."))
		return
	}

	filter.Limit = page.Size
	filter.Offset = page.Offset()

	cctx, cancel := requestContext(ctx)
	defer cancel()

	events, total, err := h.repo.List(cctx, filter)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	if page.Number > utils.LastPage(total, page.Size) {
		RespondAppError(ctx, apperr.WithDetail(apperr.KindNotFound, "Invalid page."))
		return
	}

	items := make([]eventListItem, 0, len(events))
	for _, e := range events {
		items = append(items, toListItem(e, now))
	}

	next, previous := utils.PageLinks(absoluteURL(ctx), page, total)

	RespondJSONWithETag(ctx, http.StatusOK, eventPage{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  items,
	})
}

func (h *EventsHandler) GetEventById(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	e, ok := loadEvent(ctx, cctx, h.repo)
	if !ok {
		return
	}

	registered := false
	if actorID, ok := middlewares.UserIDFromContext(ctx); ok && h.registrations != nil {
		var err error
		registered, err = h.registrations.IsRegistered(cctx, actorID, e)
		if err != nil {
			RespondAppError(ctx, err)
			return
		}
	}

	RespondJSONWithETag(ctx, http.StatusOK, eventDetail{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		Date:              e.Date,
		Location:          e.Location,
		Organizer:         e.Organizer,
		ParticipantsCount: e.ParticipantsCount,
		IsUpcoming:        e.IsUpcoming(h.now()),
		IsRegistered:      registered,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	})
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	actorID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondAppError(ctx, apperr.ErrNotAuthenticated)
		return
	}

	var req event.CreateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	e := event.NewFromCreateRequest(req, actorID, h.now())

	if err := h.repo.Create(cctx, e); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "User not found."))
			return
		}
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, toWrite(e))
}

// loadForWrite resolves the event and checks the caller organizes it.
func (h *EventsHandler) loadForWrite(ctx *gin.Context, cctx context.Context) (event.Event, bool) {
	e, ok := loadEvent(ctx, cctx, h.repo)
	if !ok {
		return event.Event{}, false
	}

	actorID, _ := middlewares.UserIDFromContext(ctx)
	if !event.CanMutate(actorID, e, event.OpWrite) {
		RespondAppError(ctx, apperr.ErrPermissionDenied)
		return event.Event{}, false
	}
	return e, true
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	e, ok := h.loadForWrite(ctx, cctx)
	if !ok {
		return
	}

	var req event.UpdateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	h.save(ctx, cctx, event.ApplyUpdate(e, req, h.now()))
}

func (h *EventsHandler) PatchEvent(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	e, ok := h.loadForWrite(ctx, cctx)
	if !ok {
		return
	}

	var req event.PatchEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	h.save(ctx, cctx, event.ApplyPatch(e, req, h.now()))
}

func (h *EventsHandler) save(ctx *gin.Context, cctx context.Context, e event.Event) {
	if err := h.repo.Update(cctx, e); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondAppError(ctx, apperr.ErrEventNotFound)
			return
		}
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toWrite(e))
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	e, ok := h.loadForWrite(ctx, cctx)
	if !ok {
		return
	}

	if err := h.repo.Delete(cctx, e.ID); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondAppError(ctx, apperr.ErrEventNotFound)
			return
		}
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// parseListFilter reads the list query. An invalid page number comes back
// as Page{} so the caller can answer 404.
func parseListFilter(q url.Values, now time.Time) (event.ListEventsFilter, utils.Page, []FieldError) {
	var f event.ListEventsFilter
	var errs []FieldError

	text := func(key string) *string {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return &v
		}
		return nil
	}

	f.Title = text("title")
	f.Location = text("location")
	f.Search = text("search")

	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"date_from", &f.DateFrom}, {"date_to", &f.DateTo}} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		t, ok := parseDateParam(raw)
		if !ok {
			errs = append(errs, FieldError{Field: p.key, Rule: "datetime", Message: "Enter a valid date/time."})
			continue
		}
		*p.dst = &t
	}

	switch strings.ToLower(strings.TrimSpace(q.Get("upcoming"))) {
	case "":
	case "true", "1":
		f.StartsAfter = &now
	case "false", "0":
	default:
		errs = append(errs, FieldError{Field: "upcoming", Rule: "boolean", Message: "must be true or false"})
	}

	if org := text("organizer"); org != nil {
		if !utils.IsUUID(*org) {
			errs = append(errs, FieldError{Field: "organizer", Rule: "uuid", Message: "Select a valid choice. That choice is not one of the available choices."})
		} else {
			f.OrganizerID = org
		}
	}

	f.Ordering = event.ParseOrdering(strings.TrimSpace(q.Get("ordering")))

	if errs != nil {
		return event.ListEventsFilter{}, utils.Page{}, errs
	}

	page, err := utils.ParsePage(q)
	if err != nil {
		return f, utils.Page{}, nil
	}
	return f, page, nil
}

var dateParamLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseDateParam(raw string) (time.Time, bool) {
	for _, layout := range dateParamLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func absoluteURL(ctx *gin.Context) url.URL {
	u := *ctx.Request.URL
	u.Host = ctx.Request.Host

	u.Scheme = "http"
	if ctx.Request.TLS != nil {
		u.Scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		u.Scheme = proto
	}
	return u
}
