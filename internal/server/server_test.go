package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/database"
	"github.com/dukerupert/fusionmeals/internal/middleware"
)

func setupServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := New(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.Router()
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	h := setupServer(t, Config{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("health body = %q", got)
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `path="GET /health"`) {
		t.Error("metrics should label requests by route pattern")
	}
}

func TestRoutes(t *testing.T) {
	h := setupServer(t, Config{})

	tests := []struct {
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/recipes/", "", http.StatusOK},
		{http.MethodGet, "/recipes/recipe-of-the-day", "", http.StatusOK},
		{http.MethodGet, "/pantry/inventory", "", http.StatusOK},
		{http.MethodPost, "/pantry/check-recipe", "", http.StatusNotImplemented},
		{http.MethodGet, "/global-cuisine/regions", "", http.StatusOK},
		{http.MethodPost, "/recipes/generate", `{"ingredients": "rice", "cuisine1": "Thai", "cuisine2": "Greek"}`, http.StatusServiceUnavailable},
		{http.MethodGet, "/ai-chef/subscription/status", "", http.StatusUnauthorized},
		{http.MethodGet, "/push/subscriptions", "", http.StatusUnauthorized},
		{http.MethodGet, "/push/vapid-key", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/admin/backups", "", http.StatusServiceUnavailable},
		{http.MethodPost, "/billing/webhook", "{}", http.StatusServiceUnavailable},
		{http.MethodGet, "/no-such-route", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d: %s", tt.method, tt.target, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestSessionCookieFlow(t *testing.T) {
	h := setupServer(t, Config{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d, want %d", rec.Code, http.StatusOK)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/ai-chef/subscription/status", nil)
	req.AddCookie(cookie)
	rec = serve(h, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with session = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestAdminToken(t *testing.T) {
	h := setupServer(t, Config{AdminToken: "s3cret"})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"missing", "", http.StatusForbidden},
		{"wrong", "nope", http.StatusForbidden},
		{"valid", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/backups/status", nil)
			if tt.token != "" {
				req.Header.Set(middleware.AdminTokenHeader, tt.token)
			}
			if rec := serve(h, req); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestLLMRateLimit(t *testing.T) {
	h := setupServer(t, Config{})

	for i := 0; i < llmBurst; i++ {
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/grocery/parse-recipe", strings.NewReader(`{}`)))
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d limited before burst was spent", i+1)
		}
	}

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/grocery/parse-recipe", strings.NewReader(`{}`)))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// Endpoints that do not call the model are not limited.
	rec = serve(h, httptest.NewRequest(http.MethodPost, "/grocery/add-to-cart", strings.NewReader(`[]`)))
	if rec.Code != http.StatusOK {
		t.Errorf("add-to-cart status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLLMRateLimitIgnoresUntrustedForwarding(t *testing.T) {
	h := setupServer(t, Config{TrustedProxies: []string{"10.0.0.1"}})

	post := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/grocery/parse-recipe", strings.NewReader(`{}`))
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", forwarded)
		return serve(h, req).Code
	}

	for i := 0; i < llmBurst; i++ {
		post("203.0.113.7:4000", fmt.Sprintf("198.51.100.%d", i))
	}
	if code := post("203.0.113.7:4000", "198.51.100.250"); code != http.StatusTooManyRequests {
		t.Errorf("rotated header status = %d, want %d", code, http.StatusTooManyRequests)
	}

	// Behind the trusted proxy each forwarded client has its own bucket.
	if code := post("10.0.0.1:4000", "198.51.100.1"); code == http.StatusTooManyRequests {
		t.Error("client behind trusted proxy should not share the limited bucket")
	}
}
