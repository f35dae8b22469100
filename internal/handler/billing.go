package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/auth"
	"github.com/dukerupert/fusionmeals/internal/billing/stripe"
	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/store"
)

// maxWebhookBody bounds the Stripe event payload we are willing to read.
const maxWebhookBody = 64 << 10

type BillingHandler struct {
	stripe    *stripe.Client
	subStore  *store.SubscriptionStore
	userStore *store.UserStore
	logger    *slog.Logger
}

func NewBillingHandler(sc *stripe.Client, ss *store.SubscriptionStore, us *store.UserStore, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{stripe: sc, subStore: ss, userStore: us, logger: logger}
}

// Checkout handles POST /ai-chef/subscription/checkout
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.stripe.Configured() {
		writeError(w, http.StatusServiceUnavailable, "billing is not configured")
		return
	}
	userID := auth.UserID(r.Context())

	sub, err := h.subStore.GetOrCreate(userID)
	if err != nil {
		h.logger.Error("get subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	customerID := sub.StripeCustomerID
	if customerID == "" {
		user, err := h.userStore.GetByID(userID)
		if err != nil || user == nil {
			h.logger.Error("get user for checkout", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		customerID, err = h.stripe.CreateCustomer(user.Email, userID)
		if err != nil {
			h.logger.Error("create stripe customer", "error", err)
			writeError(w, http.StatusBadGateway, "failed to start checkout")
			return
		}
		if err := h.subStore.SetStripeCustomer(userID, customerID); err != nil {
			h.logger.Error("save stripe customer", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start checkout")
			return
		}
	}

	url, err := h.stripe.CreateCheckoutSession(customerID, userID)
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		writeError(w, http.StatusBadGateway, "failed to start checkout")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

// Webhook handles POST /billing/webhook
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	event, err := h.stripe.ConstructWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, stripe.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "billing is not configured")
			return
		}
		h.logger.Warn("invalid webhook signature", "error", err)
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	upd, err := stripe.SubscriptionUpdate(event)
	if err != nil {
		h.logger.Error("decode webhook event", "error", err, "type", event.Type)
		writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if upd == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if upd.UserID != "" && upd.Premium {
		err = h.subStore.ActivateStripe(upd.UserID, upd.CustomerID, upd.SubscriptionID, upd.Expiry)
	} else {
		level := model.SubscriptionBasic
		if upd.Premium {
			level = model.SubscriptionPremium
		}
		err = h.subStore.SetLevelByStripeSubscription(upd.SubscriptionID, level, upd.Expiry)
	}
	if err != nil {
		h.logger.Error("apply subscription update", "error", err, "type", event.Type)
		writeError(w, http.StatusInternalServerError, "failed to apply event")
		return
	}

	h.logger.Info("subscription updated", "type", event.Type, "subscription_id", upd.SubscriptionID, "premium", upd.Premium)
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
