package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/http/handlers"
	"github.com/geocoder89/eventmanager/internal/http/middlewares"
)

func bindRouter[T any]() *gin.Engine {
	r := gin.New()
	r.POST("/bind", func(ctx *gin.Context) {
		var req T
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func fieldsByName(body apperr.Body) map[string]apperr.FieldError {
	found := map[string]apperr.FieldError{}
	for _, fe := range body.Errors {
		found[fe.Field] = fe
	}
	return found
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	r := bindRouter[event.CreateEventRequest]()

	w := doJSON(r, http.MethodPost, "/bind", `{"title":"`+strings.Repeat("x", 201)+`"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	body := decodeError(t, w)
	if body.Code != "invalid" {
		t.Fatalf("unexpected code: %s", body.Code)
	}

	wantRules := map[string]string{
		"title":       "max",
		"description": "required",
		"date":        "required",
	}

	found := fieldsByName(body)
	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, body.Errors)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	r := bindRouter[event.CreateEventRequest]()

	w := doJSON(r, http.MethodPost, "/bind", `{"title":42,"description":"d","date":"2026-03-01T09:00:00Z"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	body := decodeError(t, w)
	if len(body.Errors) == 0 {
		t.Fatalf("expected at least one field error")
	}

	fieldErr := body.Errors[0]
	if fieldErr.Field != "title" {
		t.Fatalf("expected errors[0].field=title, got %q", fieldErr.Field)
	}
	if fieldErr.Rule != "type" {
		t.Fatalf("expected errors[0].rule=type, got %q", fieldErr.Rule)
	}
}

func TestBindJSON_BodyProblems(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRule string
	}{
		{name: "empty", body: "", wantRule: "required"},
		{name: "broken json", body: `{"title":`, wantRule: "json"},
		{name: "bad date", body: `{"title":"t","description":"d","date":"tomorrow"}`, wantRule: "datetime"},
	}

	r := bindRouter[event.CreateEventRequest]()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}
			body := decodeError(t, w)
			if len(body.Errors) != 1 || body.Errors[0].Rule != tt.wantRule {
				t.Fatalf("errors = %+v, want rule %q", body.Errors, tt.wantRule)
			}
		})
	}
}

func TestBindJSON_UsernameRule(t *testing.T) {
	r := bindRouter[user.SignUpRequest]()

	w := doJSON(r, http.MethodPost, "/bind", `{"username":"bad name!","email":"a@example.com","password":"x","password_confirm":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	fe, ok := fieldsByName(decodeError(t, w))["username"]
	if !ok || fe.Rule != "username" {
		t.Fatalf("expected a username rule failure, got %s", w.Body.String())
	}
}

func TestBindJSON_PayloadTooLarge(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(16))
	r.POST("/bind", func(ctx *gin.Context) {
		var req event.CreateEventRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	w := doJSON(r, http.MethodPost, "/bind", `{"title":"`+strings.Repeat("x", 64)+`"}`)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if got := decodeError(t, w).Code; got != "payload_too_large" {
		t.Fatalf("code = %q", got)
	}
}

func TestBindJSON_BlankTextRule(t *testing.T) {
	r := bindRouter[event.PatchEventRequest]()

	w := doJSON(r, http.MethodPost, "/bind", `{"title":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	fe, ok := fieldsByName(decodeError(t, w))["title"]
	if !ok || fe.Rule != "notblank" || fe.Message != "may not be blank" {
		t.Fatalf("expected a notblank failure on title, got %s", w.Body.String())
	}
}
