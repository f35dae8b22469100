package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/fusionmeals/internal/auth"
	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/push"
	"github.com/dukerupert/fusionmeals/internal/store"
)

// PushHandler manages Web Push subscriptions. A nil scheduler means VAPID
// keys are not configured; subscriptions are still stored.
type PushHandler struct {
	pushStore *store.PushStore
	service   *push.Service
	scheduler *push.Scheduler
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, sched *push.Scheduler, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, scheduler: sched, logger: logger}
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint" validate:"required,url"`
	P256dh     string `json:"p256dh" validate:"required"`
	Auth       string `json:"auth" validate:"required"`
	DeviceName string `json:"device_name"`
}

// Subscribe handles POST /push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.pushStore.CreateSubscription(userID, req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ok, err := h.pushStore.DeleteSubscription(id, userID)
	if err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// VAPIDKey handles GET /push/vapid-key
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// Preferences handles GET /push/preferences. Types without a stored row
// are reported enabled.
func (h *PushHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.preferences(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get push preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *PushHandler) preferences(userID string) ([]model.NotificationPreference, error) {
	stored, err := h.pushStore.GetPreferences(userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]model.NotificationPreference, len(stored))
	for _, p := range stored {
		byType[p.NotificationType] = p
	}
	prefs := make([]model.NotificationPreference, 0, 2)
	for _, t := range []string{model.NotifTypePantryExpiring, model.NotifTypePantryLowStock} {
		p, ok := byType[t]
		if !ok {
			p = model.NotificationPreference{NotificationType: t, Enabled: true}
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}

type updatePreferencesRequest struct {
	Preferences []prefItem `json:"preferences" validate:"required,dive"`
}

type prefItem struct {
	Type    string `json:"type" validate:"required,oneof=pantry_expiring pantry_low_stock"`
	Enabled bool   `json:"enabled"`
}

// UpdatePreferences handles PUT /push/preferences
func (h *PushHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req updatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, p := range req.Preferences {
		if err := h.pushStore.SetPreference(userID, p.Type, p.Enabled); err != nil {
			h.logger.Error("set push preference", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update preferences")
			return
		}
	}

	h.Preferences(w, r)
}

// TestNotification handles POST /push/test
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}

	sent, err := h.scheduler.SendToUser(r.Context(), auth.UserID(r.Context()), push.Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working!",
		URL:   "/pantry",
		Tag:   "test",
	})
	if err != nil {
		h.logger.Error("test push send", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send notification")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
