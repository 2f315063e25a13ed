// internal/app/features/auth/google.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/store/provision"
	"github.com/dalemusser/crewdeck/internal/app/system/auditlog"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateCookie carries the CSRF state across the OAuth round-trip. The
// value is random and single-use; the cookie is cleared on callback.
const stateCookie = "oauth_state"

// GoogleHandler runs the Google OAuth login flow and hands the verified
// profile to the provisioning service.
type GoogleHandler struct {
	Provision  *provision.Service
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://crewdeck.example.com/auth/google/callback"
	FrontendURL  string // where the browser lands after login
	Secure       bool
}

func NewGoogleHandler(svc *provision.Service, sm *auth.SessionManager, audit *auditlog.Logger,
	clientID, clientSecret, baseURL, frontendURL string, secure bool, log *zap.Logger) *GoogleHandler {
	return &GoogleHandler{
		Provision:    svc,
		SessionMgr:   sm,
		AuditLog:     audit,
		Log:          log,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		FrontendURL:  frontendURL,
		Secure:       secure,
	}
}

func (h *GoogleHandler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether Google login can be offered.
func (h *GoogleHandler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeBegin handles GET /auth/google: stash a random state in a
// short-lived cookie and redirect to Google's consent screen.
func (h *GoogleHandler) ServeBegin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		h.redirectWithError(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("generate oauth state failed", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validate state,
// exchange the code, fetch the profile, and resolve-or-provision the
// user per the configured identity policy.
func (h *GoogleHandler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth denied", zap.String("error", errParam))
		h.redirectWithError(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if state == "" || err != nil || cookie.Value != state {
		h.Log.Warn("oauth state mismatch")
		h.redirectWithError(w, r, "invalid_state")
		return
	}
	// State is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(r.Context(), code)
	if err != nil {
		h.Log.Error("oauth code exchange failed", zap.Error(err))
		h.redirectWithError(w, r, "token_exchange")
		return
	}

	info, err := fetchGoogleUserInfo(r.Context(), token)
	if err != nil {
		h.Log.Error("fetch google user info failed", zap.Error(err))
		h.redirectWithError(w, r, "user_info")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Provision.LoginOrCreateAccount(ctx, provision.Profile{
		Provider:    "google",
		ProviderID:  info.ID,
		DisplayName: info.Name,
		Email:       info.Email,
		Picture:     info.Picture,
	})
	if err != nil {
		h.Log.Warn("federated login rejected", zap.Error(err),
			zap.String("email", info.Email))
		h.AuditLog.Log(ctx, auditlog.Event{
			Category:      auditlog.CategoryAuth,
			EventType:     "login",
			Success:       false,
			IP:            auditlog.ClientIP(r),
			FailureReason: "google: " + err.Error(),
		})
		h.redirectWithError(w, r, "provision_failed")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err))
		h.redirectWithError(w, r, "session")
		return
	}

	h.AuditLog.Login(ctx, r, user.ID, true, "")
	http.Redirect(w, r, h.FrontendURL+"/", http.StatusSeeOther)
}

func (h *GoogleHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.FrontendURL+"/login?error="+code, http.StatusSeeOther)
}

// googleUserInfo is the subset of Google's userinfo payload we use.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: unexpected status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
