package amazon

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	amazonauth "golang.org/x/oauth2/amazon"
)

// MockAuthURL is returned when Login with Amazon is not configured.
const MockAuthURL = "https://www.amazon.com/ap/oa?mock=true"

const (
	stateCookie = "amazon_oauth_state"
	tokenTTL    = time.Hour
)

var (
	ErrNotConfigured = errors.New("amazon login not configured")
	ErrBadState      = errors.New("invalid oauth state")
)

// Tokens are the Amazon credentials stored on a session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type OAuthConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	SessionSecret string
}

// OAuth runs the Login with Amazon authorization code flow. The state
// parameter round-trips through a signed cookie.
type OAuth struct {
	config *oauth2.Config
	cookie *securecookie.SecureCookie
	secure bool
	now    func() time.Time
}

// NewOAuth returns an unconfigured (mock) flow unless client id, secret and
// redirect URL are all set.
func NewOAuth(cfg OAuthConfig) *OAuth {
	o := &OAuth{
		cookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		now:    time.Now,
	}
	o.cookie.MaxAge(600)
	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RedirectURL != "" {
		o.config = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     amazonauth.Endpoint,
			Scopes:       []string{"profile"},
		}
	}
	return o
}

func (o *OAuth) Configured() bool {
	return o.config != nil
}

// SetSecureCookies marks the state cookie Secure.
func (o *OAuth) SetSecureCookies(secure bool) {
	o.secure = secure
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL returns the URL to send the user to. When configured it also sets
// the signed state cookie checked by VerifyState.
func (o *OAuth) AuthURL(w http.ResponseWriter) (string, error) {
	if !o.Configured() {
		return MockAuthURL, nil
	}
	state, err := generateState()
	if err != nil {
		return "", err
	}
	encoded, err := o.cookie.Encode(stateCookie, state)
	if err != nil {
		return "", fmt.Errorf("encode state cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   o.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return o.config.AuthCodeURL(state), nil
}

// VerifyState checks the callback state against the signed cookie and
// clears it. The mock flow accepts any state.
func (o *OAuth) VerifyState(w http.ResponseWriter, r *http.Request, state string) error {
	if !o.Configured() {
		return nil
	}
	c, err := r.Cookie(stateCookie)
	if err != nil {
		return ErrBadState
	}
	var want string
	if err := o.cookie.Decode(stateCookie, c.Value, &want); err != nil {
		return ErrBadState
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})
	if state == "" || state != want {
		return ErrBadState
	}
	return nil
}

// Exchange trades an authorization code for tokens.
func (o *OAuth) Exchange(ctx context.Context, code string) (*Tokens, error) {
	if !o.Configured() {
		return nil, ErrNotConfigured
	}
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange amazon code: %w", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return nil, fmt.Errorf("exchange amazon code: incomplete token response")
	}
	expires := tok.Expiry
	if expires.IsZero() {
		expires = o.now().Add(tokenTTL)
	}
	return &Tokens{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken, ExpiresAt: expires}, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// MockTokens issues fake credentials valid for an hour.
func (o *OAuth) MockTokens() *Tokens {
	return &Tokens{
		AccessToken:  "amzn_" + randomHex(16),
		RefreshToken: "amzn_refresh_" + randomHex(16),
		ExpiresAt:    o.now().Add(tokenTTL),
	}
}
