package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/http/handlers"
)

type fakeWorkflow struct {
	registerFn   func(ctx context.Context, actor user.User, e event.Event) (registration.Registration, error)
	unregisterFn func(ctx context.Context, actor user.User, e event.Event) error
	listFn       func(ctx context.Context, e event.Event) ([]registration.Participant, error)
}

func (f *fakeWorkflow) Register(ctx context.Context, actor user.User, e event.Event) (registration.Registration, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, actor, e)
	}
	return registration.New(actor.ID, e.ID, time.Now()), nil
}

func (f *fakeWorkflow) Unregister(ctx context.Context, actor user.User, e event.Event) error {
	if f.unregisterFn != nil {
		return f.unregisterFn(ctx, actor, e)
	}
	return nil
}

func (f *fakeWorkflow) ListParticipants(ctx context.Context, e event.Event) ([]registration.Participant, error) {
	if f.listFn != nil {
		return f.listFn(ctx, e)
	}
	return nil, nil
}

type fakeUsers struct {
	byID map[string]user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return user.User{}, user.ErrNotFound
}

func TestRegisterHandler(t *testing.T) {
	organizer := newUUID()
	e := sampleEvent(organizer)
	bob := user.User{ID: newUUID(), Username: "bob", Email: "bob@example.com"}

	events := &fakeEventsRepo{
		getFn: func(ctx context.Context, id string) (event.Event, error) {
			if id == e.ID {
				return e, nil
			}
			return event.Event{}, event.ErrNotFound
		},
	}
	users := &fakeUsers{byID: map[string]user.User{bob.ID: bob}}

	tests := []struct {
		name           string
		actorID        string
		eventID        string
		registerErr    error
		wantStatusCode int
		wantCode       string
	}{
		{name: "success", actorID: bob.ID, eventID: e.ID, wantStatusCode: http.StatusCreated},
		{name: "already registered", actorID: bob.ID, eventID: e.ID, registerErr: apperr.ErrAlreadyRegistered, wantStatusCode: http.StatusBadRequest, wantCode: "already_registered"},
		{name: "unknown event", actorID: bob.ID, eventID: newUUID(), wantStatusCode: http.StatusNotFound, wantCode: "event_not_found"},
		{name: "malformed event id", actorID: bob.ID, eventID: "nope", wantStatusCode: http.StatusNotFound, wantCode: "event_not_found"},
		{name: "anonymous", eventID: e.ID, wantStatusCode: http.StatusUnauthorized, wantCode: "not_authenticated"},
		{name: "deleted user", actorID: newUUID(), eventID: e.ID, wantStatusCode: http.StatusUnauthorized, wantCode: "token_not_valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := &fakeWorkflow{}
			if tt.registerErr != nil {
				wf.registerFn = func(context.Context, user.User, event.Event) (registration.Registration, error) {
					return registration.Registration{}, tt.registerErr
				}
			}

			h := handlers.NewRegistrationHandler(wf, events, users)
			r := setupRouter(http.MethodPost, "/events/:id/register", tt.actorID, h.Register)

			w := doJSON(r, http.MethodPost, "/events/"+tt.eventID+"/register", "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				if got := decodeError(t, w).Code; got != tt.wantCode {
					t.Fatalf("code = %q, want %q", got, tt.wantCode)
				}
				return
			}

			var got map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got["detail"] != "Successfully registered for the event." {
				t.Fatalf("detail = %v", got["detail"])
			}
			if code, ok := got["code"]; !ok || code != nil {
				t.Fatalf("code should be present and null, got %v", got["code"])
			}
		})
	}
}

func TestUnregisterHandler(t *testing.T) {
	e := sampleEvent(newUUID())
	bob := user.User{ID: newUUID(), Username: "bob"}

	events := &fakeEventsRepo{getFn: func(context.Context, string) (event.Event, error) { return e, nil }}
	users := &fakeUsers{byID: map[string]user.User{bob.ID: bob}}

	tests := []struct {
		name           string
		err            error
		wantStatusCode int
	}{
		{name: "success", wantStatusCode: http.StatusNoContent},
		{name: "not registered", err: apperr.ErrNotRegistered, wantStatusCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotActor user.User
			wf := &fakeWorkflow{unregisterFn: func(_ context.Context, actor user.User, _ event.Event) error {
				gotActor = actor
				return tt.err
			}}

			h := handlers.NewRegistrationHandler(wf, events, users)
			r := setupRouter(http.MethodDelete, "/events/:id/register", bob.ID, h.Unregister)

			w := doJSON(r, http.MethodDelete, "/events/"+e.ID+"/register", "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
			if gotActor.ID != bob.ID {
				t.Fatalf("workflow saw actor %q", gotActor.ID)
			}
		})
	}
}

func TestParticipantsHandler(t *testing.T) {
	e := sampleEvent(newUUID())
	events := &fakeEventsRepo{getFn: func(_ context.Context, id string) (event.Event, error) {
		if id == e.ID {
			return e, nil
		}
		return event.Event{}, event.ErrNotFound
	}}

	now := time.Now().UTC()
	wf := &fakeWorkflow{listFn: func(context.Context, event.Event) ([]registration.Participant, error) {
		return []registration.Participant{
			{ID: newUUID(), Username: "carol", Email: "carol@example.com", RegisteredAt: now},
			{ID: newUUID(), Username: "bob", Email: "bob@example.com", RegisteredAt: now.Add(-time.Minute)},
		}, nil
	}}

	h := handlers.NewRegistrationHandler(wf, events, &fakeUsers{})
	r := setupRouter(http.MethodGet, "/events/:id/participants", "", h.ListParticipants)

	w := doJSON(r, http.MethodGet, "/events/"+e.ID+"/participants", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0]["username"] != "carol" {
		t.Fatalf("unexpected participants: %s", w.Body.String())
	}
	for _, key := range []string{"id", "username", "email", "registered_at"} {
		if _, ok := got[0][key]; !ok {
			t.Fatalf("participant missing %q", key)
		}
	}

	w = doJSON(r, http.MethodGet, "/events/"+newUUID()+"/participants", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown event status = %d", w.Code)
	}
}

func TestParticipantsEmptyIsArray(t *testing.T) {
	e := sampleEvent(newUUID())
	events := &fakeEventsRepo{getFn: func(context.Context, string) (event.Event, error) { return e, nil }}

	h := handlers.NewRegistrationHandler(&fakeWorkflow{}, events, &fakeUsers{})
	r := setupRouter(http.MethodGet, "/events/:id/participants", "", h.ListParticipants)

	w := doJSON(r, http.MethodGet, "/events/"+e.ID+"/participants", "")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}
