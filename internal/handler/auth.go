package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/amazon"
	"github.com/dukerupert/fusionmeals/internal/auth"
	"github.com/dukerupert/fusionmeals/internal/middleware"
	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/store"
)

type AuthHandler struct {
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	oauth         *amazon.OAuth
	frontendURL   string
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(ss *store.SessionStore, us *store.UserStore, oauth *amazon.OAuth, frontendURL string, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessionStore:  ss,
		userStore:     us,
		oauth:         oauth,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type sessionResponse struct {
	SessionID          string `json:"session_id"`
	UserID             string `json:"user_id"`
	AmazonConnected    bool   `json:"amazon_connected"`
	InstacartConnected bool   `json:"instacart_connected"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentSession returns the request's session, or nil when it has none.
func (h *AuthHandler) currentSession(r *http.Request) (*model.Session, error) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, nil
	}
	return h.sessionStore.GetByToken(ac.Token)
}

// ensureSession returns the request's session, starting a guest session
// and setting its cookie when the request has none.
func (h *AuthHandler) ensureSession(w http.ResponseWriter, r *http.Request) (*model.Session, error) {
	sess, err := h.currentSession(r)
	if err != nil || sess != nil {
		return sess, err
	}

	user, err := h.userStore.CreateGuest()
	if err != nil {
		return nil, err
	}
	sess, err = h.sessionStore.Create(user.ID)
	if err != nil {
		return nil, err
	}
	h.setSessionCookie(w, sess.Token)
	h.logger.Info("guest session started", "user_id", user.ID)
	return sess, nil
}

// Session handles GET /auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ensureSession(w, r)
	if err != nil {
		h.logger.Error("start session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:       sess.Token,
		UserID:          sess.UserID,
		AmazonConnected: sess.AmazonConnected(),
	})
}

// AmazonAuth handles POST /auth/amazon/auth
func (h *AuthHandler) AmazonAuth(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ensureSession(w, r)
	if err != nil {
		h.logger.Error("start session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	authURL, err := h.oauth.AuthURL(w)
	if err != nil {
		h.logger.Error("build amazon auth url", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start Amazon login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL, "session_id": sess.Token})
}

// exchange trades a code for tokens, or issues mock tokens when Login with
// Amazon is not configured.
func (h *AuthHandler) exchange(ctx context.Context, code string) (*amazon.Tokens, error) {
	if !h.oauth.Configured() {
		return h.oauth.MockTokens(), nil
	}
	return h.oauth.Exchange(ctx, code)
}

func (h *AuthHandler) connect(r *http.Request, sess *model.Session, code string) error {
	tokens, err := h.exchange(r.Context(), code)
	if err != nil {
		return err
	}
	return h.sessionStore.SetAmazonTokens(sess.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt)
}

// AmazonCallback handles GET /auth/amazon/callback, the redirect target of
// Login with Amazon.
func (h *AuthHandler) AmazonCallback(w http.ResponseWriter, r *http.Request) {
	sess, err := h.currentSession(r)
	if err != nil || sess == nil {
		writeError(w, http.StatusUnauthorized, "No session found")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Authorization code not provided")
		return
	}
	if err := h.oauth.VerifyState(w, r, r.URL.Query().Get("state")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.connect(r, sess, code); err != nil {
		h.logger.Error("amazon callback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to authenticate with Amazon")
		return
	}

	http.Redirect(w, r, h.frontendURL+"/meal-plans?amazon_connected=true", http.StatusFound)
}

type amazonCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

// AmazonCallbackPost handles POST /auth/amazon/callback for clients that
// relay the code themselves.
func (h *AuthHandler) AmazonCallbackPost(w http.ResponseWriter, r *http.Request) {
	sess, err := h.currentSession(r)
	if err != nil || sess == nil {
		writeError(w, http.StatusUnauthorized, "No session found")
		return
	}

	var req amazonCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.connect(r, sess, req.Code); err != nil {
		h.logger.Error("amazon callback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to authenticate with Amazon")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Amazon connected successfully"})
}

// AmazonMockAuth handles POST /auth/amazon/mock-auth
func (h *AuthHandler) AmazonMockAuth(w http.ResponseWriter, r *http.Request) {
	sess, err := h.ensureSession(w, r)
	if err != nil {
		h.logger.Error("start session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	tokens := h.oauth.MockTokens()
	if err := h.sessionStore.SetAmazonTokens(sess.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		h.logger.Error("store mock amazon tokens", "error", err)
		writeError(w, http.StatusUnauthorized, "Failed to authenticate with Amazon")
		return
	}
	h.setSessionCookie(w, sess.Token)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Amazon connected successfully (mock)",
		"amazon_token": tokens.AccessToken,
	})
}
