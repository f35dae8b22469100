package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/store"
)

func TestPushSubscriptionLifecycle(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewPushHandler(store.NewPushStore(db), nil, nil, testLogger)
	guest := newGuest(t, db)

	rec := httptest.NewRecorder()
	h.Subscribe(rec, withAuth(jsonRequest(http.MethodPost, "/push/subscribe",
		`{"endpoint": "https://push.example.com/abc", "p256dh": "key", "auth": "secret", "device_name": "Phone"}`), guest))
	if rec.Code != http.StatusCreated {
		t.Fatalf("subscribe status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var sub model.PushSubscription
	decodeBody(t, rec, &sub)

	rec = httptest.NewRecorder()
	h.ListSubscriptions(rec, withAuth(httptest.NewRequest(http.MethodGet, "/push/subscriptions", nil), guest))
	var subs []model.PushSubscription
	decodeBody(t, rec, &subs)
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example.com/abc" {
		t.Fatalf("subscriptions = %+v, want one", subs)
	}

	unsubscribe := func() int {
		id := strconv.FormatInt(sub.ID, 10)
		req := withAuth(httptest.NewRequest(http.MethodDelete, "/push/subscriptions/"+id, nil), guest)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.Unsubscribe(rec, req)
		return rec.Code
	}
	if code := unsubscribe(); code != http.StatusNoContent {
		t.Errorf("unsubscribe status = %d, want %d", code, http.StatusNoContent)
	}
	if code := unsubscribe(); code != http.StatusNotFound {
		t.Errorf("second unsubscribe status = %d, want %d", code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	h.ListSubscriptions(rec, withAuth(httptest.NewRequest(http.MethodGet, "/push/subscriptions", nil), guest))
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestPushSubscribeValidation(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewPushHandler(store.NewPushStore(db), nil, nil, testLogger)
	guest := newGuest(t, db)

	rec := httptest.NewRecorder()
	h.Subscribe(rec, withAuth(jsonRequest(http.MethodPost, "/push/subscribe", `{"endpoint": "not a url", "p256dh": "k", "auth": "a"}`), guest))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPushPreferences(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewPushHandler(store.NewPushStore(db), nil, nil, testLogger)
	guest := newGuest(t, db)

	get := func() map[string]bool {
		rec := httptest.NewRecorder()
		h.Preferences(rec, withAuth(httptest.NewRequest(http.MethodGet, "/push/preferences", nil), guest))
		var prefs []model.NotificationPreference
		decodeBody(t, rec, &prefs)
		out := make(map[string]bool, len(prefs))
		for _, p := range prefs {
			out[p.NotificationType] = p.Enabled
		}
		return out
	}

	defaults := get()
	if len(defaults) != 2 || !defaults[model.NotifTypePantryExpiring] || !defaults[model.NotifTypePantryLowStock] {
		t.Errorf("defaults = %v, want both enabled", defaults)
	}

	rec := httptest.NewRecorder()
	h.UpdatePreferences(rec, withAuth(jsonRequest(http.MethodPut, "/push/preferences",
		`{"preferences": [{"type": "pantry_low_stock", "enabled": false}]}`), guest))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	got := get()
	if !got[model.NotifTypePantryExpiring] || got[model.NotifTypePantryLowStock] {
		t.Errorf("preferences = %v, want low stock disabled", got)
	}

	rec = httptest.NewRecorder()
	h.UpdatePreferences(rec, withAuth(jsonRequest(http.MethodPut, "/push/preferences",
		`{"preferences": [{"type": "weather", "enabled": true}]}`), guest))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPushNotConfigured(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewPushHandler(store.NewPushStore(db), nil, nil, testLogger)
	guest := newGuest(t, db)

	tests := []struct {
		name   string
		handle http.HandlerFunc
	}{
		{"vapid key", h.VAPIDKey},
		{"test notification", h.TestNotification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handle(rec, withAuth(httptest.NewRequest(http.MethodGet, "/", nil), guest))
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
		})
	}
}
