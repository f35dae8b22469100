package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/fusionmeals/internal/aichef"
	"github.com/dukerupert/fusionmeals/internal/auth"
	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/store"
)

// premiumTerm is how long a manual upgrade to premium lasts.
const premiumTerm = 30 * 24 * time.Hour

type AIChefHandler struct {
	chef     *aichef.Service
	subStore *store.SubscriptionStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewAIChefHandler(chef *aichef.Service, ss *store.SubscriptionStore, logger *slog.Logger) *AIChefHandler {
	return &AIChefHandler{chef: chef, subStore: ss, logger: logger, now: time.Now}
}

// Chef handles POST /ai-chef/premium/ai-chef
func (h *AIChefHandler) Chef(w http.ResponseWriter, r *http.Request) {
	var req aichef.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sub *model.Subscription
	if userID := auth.UserID(r.Context()); userID != "" {
		var err error
		sub, err = h.subStore.Get(userID)
		if err != nil {
			h.logger.Error("get subscription", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load subscription")
			return
		}
	}

	resp, err := h.chef.Chef(r.Context(), req, sub)
	switch {
	case errors.Is(err, aichef.ErrPremiumRequired):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"detail": map[string]string{
				"message":     "This is a premium feature. Please upgrade your subscription to access AI Personal Chef.",
				"upgrade_url": "/subscription/upgrade",
			},
		})
	case errors.Is(err, aichef.ErrInvalidRequestType):
		writeError(w, http.StatusBadRequest, "Invalid request type")
	case err != nil:
		writeLLMError(w, h.logger, "failed to generate AI chef response", err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

type subscriptionUpdateRequest struct {
	SubscriptionLevel string             `json:"subscription_level" validate:"required,oneof=basic premium"`
	Preferences       *model.Preferences `json:"preferences"`
}

// UpdateSubscription handles POST /ai-chef/subscription/update. Upgrading a
// lapsed or basic subscription to premium starts a fresh 30-day term.
func (h *AIChefHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req subscriptionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.subStore.GetOrCreate(userID)
	if err != nil {
		h.logger.Error("get subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	prefs := sub.Preferences
	if req.Preferences != nil {
		prefs = *req.Preferences
	}
	expiry := sub.ExpiryDate
	now := h.now()
	if req.SubscriptionLevel == model.SubscriptionPremium && !sub.IsPremium(now) {
		expiry = now.Add(premiumTerm)
	}

	updated, err := h.subStore.Update(userID, req.SubscriptionLevel, prefs, expiry)
	if err != nil {
		h.logger.Error("update subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user_id":      userID,
		"subscription": updated,
	})
}

// SubscriptionStatus handles GET /ai-chef/subscription/status
func (h *AIChefHandler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	sub, err := h.subStore.GetOrCreate(userID)
	if err != nil {
		h.logger.Error("get subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":      userID,
		"subscription": sub,
	})
}
