package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"edufunkids/internal/logger"
	"edufunkids/internal/security"
	"edufunkids/internal/service"
)

const (
	oauthNonceCookie = "oauth_nonce"
	oauthCookieTTL   = 10 * time.Minute
	oauthTimeout     = 10 * time.Second

	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type oauthUserInfo struct {
	Subject string
	Email   string
}

// OAuthHandler runs the Google sign-in flow
type OAuthHandler struct {
	authService     *service.AuthService
	config          *oauth2.Config
	userInfoURL     string
	signer          *security.StateSigner
	redirectBaseURL string
	log             *logger.Logger
}

// NewOAuthHandler creates a handler for the provider described by config
func NewOAuthHandler(authService *service.AuthService, config *oauth2.Config, userInfoURL string, signer *security.StateSigner, redirectBaseURL string, log *logger.Logger) *OAuthHandler {
	return &OAuthHandler{
		authService:     authService,
		config:          config,
		userInfoURL:     userInfoURL,
		signer:          signer,
		redirectBaseURL: redirectBaseURL,
		log:             log.With("handler", "OAuthHandler"),
	}
}

func (h *OAuthHandler) enabled() bool {
	return h.config != nil && h.config.ClientID != "" && h.config.ClientSecret != ""
}

// StartOAuth redirects to Google's consent screen
func (h *OAuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "Google sign-in is not configured"})
		return
	}

	nonce, state := h.signer.New()
	h.setTempCookie(w, r, oauthNonceCookie, nonce)

	config := *h.config
	config.RedirectURL = h.oauthRedirectURL(r)
	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback finishes the flow, signs in and returns to the app
func (h *OAuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "Google sign-in is not configured"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, h.log, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	nonce := ""
	if cookie, err := r.Cookie(oauthNonceCookie); err == nil {
		nonce = cookie.Value
	}
	h.clearTempCookie(w, r, oauthNonceCookie)
	if !h.signer.Verify(nonce, r.URL.Query().Get("state")) {
		respondWithError(w, h.log, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauthTimeout)
	defer cancel()

	config := *h.config
	config.RedirectURL = h.oauthRedirectURL(r)
	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, "Failed to exchange OAuth code", "", err)
		return
	}

	info, err := h.fetchGoogleUser(ctx, &config, token)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadGateway, "Failed to fetch Google account", "", err)
		return
	}

	res, err := h.authService.OAuthLogin(ctx, "google", info.Subject, info.Email)
	if err != nil {
		respondWithServiceError(w, h.log, "OAuth login failed", err)
		return
	}

	http.SetCookie(w, security.NewCookie(r, security.AuthCookieName, res.Token, res.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *OAuthHandler) fetchGoogleUser(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (oauthUserInfo, error) {
	client := config.Client(ctx, token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	// An unverified address must not be linked to an existing account
	if !payload.VerifiedEmail {
		return oauthUserInfo{}, errors.New("google email is not verified")
	}

	return oauthUserInfo{Subject: payload.ID, Email: payload.Email}, nil
}

func (h *OAuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.redirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/google/callback"
}

func (h *OAuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	cookie := security.NewCookie(r, name, value, time.Now().Add(oauthCookieTTL))
	cookie.MaxAge = int(oauthCookieTTL.Seconds())
	http.SetCookie(w, cookie)
}

func (h *OAuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.DeleteCookie(r, name))
}
