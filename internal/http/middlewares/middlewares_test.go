package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/auth"
)

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f fakeVerifier) VerifyAccessToken(string) (*auth.Claims, error) {
	return f.claims, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Code
}

func whoami(c *gin.Context) {
	id, _ := UserIDFromContext(c)
	c.String(http.StatusOK, id)
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier fakeVerifier
		status   int
		code     string
		body     string
	}{
		{"missing header", "", fakeVerifier{}, http.StatusUnauthorized, "not_authenticated", ""},
		{"other scheme", "Basic abc", fakeVerifier{}, http.StatusUnauthorized, "not_authenticated", ""},
		{"empty bearer", "Bearer ", fakeVerifier{}, http.StatusUnauthorized, "token_not_valid", ""},
		{"bad token", "Bearer nope", fakeVerifier{err: errors.New("bad")}, http.StatusUnauthorized, "token_not_valid", ""},
		{"ok", "Bearer good", fakeVerifier{claims: &auth.Claims{UserID: "u-1", Username: "alice"}}, http.StatusOK, "", "u-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", NewAuthMiddleware(tt.verifier).RequireAuth(), whoami)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.code != "" && decodeCode(t, w) != tt.code {
				t.Fatalf("code = %q, want %q", decodeCode(t, w), tt.code)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/events", NewAuthMiddleware(fakeVerifier{err: errors.New("bad")}).OptionalAuth(), whoami)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	if w.Code != http.StatusOK || w.Body.String() != "" {
		t.Fatalf("anonymous: status=%d body=%q", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized || decodeCode(t, w) != "token_not_valid" {
		t.Fatalf("invalid token: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRateLimiterThrottlesPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.GET("/x", rl.Middleware(func(c *gin.Context) string { return c.GetHeader("X-Key") }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	hit := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Key", key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if hit("a").Code != http.StatusNoContent || hit("a").Code != http.StatusNoContent {
		t.Fatalf("burst should allow two requests")
	}

	w := hit("a")
	if w.Code != http.StatusTooManyRequests || decodeCode(t, w) != "throttled" {
		t.Fatalf("third request: status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}

	if hit("b").Code != http.StatusNoContent {
		t.Fatalf("other keys have their own bucket")
	}

	fixed = fixed.Add(time.Second)
	if hit("a").Code != http.StatusNoContent {
		t.Fatalf("bucket should refill after a second")
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(body, ct string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := send(`{}`, "application/json; charset=utf-8"); got != http.StatusNoContent {
		t.Fatalf("json body: %d", got)
	}
	if got := send(`a=b`, "application/x-www-form-urlencoded"); got != http.StatusUnsupportedMediaType {
		t.Fatalf("form body: %d", got)
	}
	if got := send("", ""); got != http.StatusNoContent {
		t.Fatalf("empty body: %d", got)
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFromContext(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc" || w.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("request id not echoed: %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if len(w.Body.String()) != 36 {
		t.Fatalf("expected generated uuid, got %q", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://app.local/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	preflight := httptest.NewRequest(http.MethodOptions, "/x", nil)
	preflight.Header.Set("Origin", "http://app.local")
	preflight.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, preflight)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://app.local" {
		t.Fatalf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("allow methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin must not be allowed")
	}
	if w.Header().Get("Vary") != "Origin" {
		t.Fatalf("Vary = %q", w.Header().Get("Vary"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must only be sent over https")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected HSTS behind https proxy")
	}
}

func TestMaxBodyBytesRejectsDeclaredOversize(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge || decodeCode(t, w) != "payload_too_large" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
