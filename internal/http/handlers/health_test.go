package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/http/handlers"
)

func TestHealthHandler(t *testing.T) {
	failing := false

	h := handlers.NewHealthHandler("1.2.3",
		handlers.Check{Name: "db", Ping: func(context.Context) error {
			if failing {
				return errors.New("down")
			}
			return nil
		}},
		handlers.Check{Name: "unused"},
	)

	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	w := doJSON(r, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("root status = %d", w.Code)
	}
	var root map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &root); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if root["status"] != "ok" || root["version"] != "1.2.3" || root["message"] == "" {
		t.Fatalf("unexpected root body: %v", root)
	}

	if w := doJSON(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", w.Code)
	}

	failing = true
	w = doJSON(r, http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", w.Code)
	}
}
