package handlers

import (
	"net/http"

	"edufunkids/internal/audio"
)

// Handlers groups everything the router serves
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	OAuth      *OAuthHandler
	Games      *GameHandler
	Lessons    *LessonHandler
	Profile    *ProfileHandler
	Startup    *StartupStatus
	// AudioDir is served under /static/audio/ when set
	AudioDir string
}

// NewRouter registers every route on a new mux
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	auth := h.Middleware.RequireAuth

	if h.Startup != nil {
		mux.HandleFunc("GET /health", h.Startup.Health)
	} else {
		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}
	if h.AudioDir != "" {
		mux.Handle("GET "+audio.URLPrefix, http.StripPrefix(audio.URLPrefix, http.FileServer(http.Dir(h.AudioDir))))
	}

	// Authentication
	mux.HandleFunc("POST /api/auth/register", h.Middleware.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", h.Middleware.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/demo", h.Middleware.RateLimit(h.Auth.Demo))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/auth/password/forgot", h.Middleware.RateLimit(h.Auth.ForgotPassword))
	mux.HandleFunc("POST /api/auth/password/reset", h.Middleware.RateLimit(h.Auth.ResetPassword))
	if h.OAuth != nil {
		mux.HandleFunc("GET /auth/google/login", h.OAuth.StartOAuth)
		mux.HandleFunc("GET /auth/google/callback", h.OAuth.OAuthCallback)
	}

	// Profile and dashboard
	mux.HandleFunc("GET /api/profile", auth(h.Profile.Profile))
	mux.HandleFunc("GET /api/dashboard", auth(h.Profile.Dashboard))
	mux.HandleFunc("GET /api/badges", h.Profile.Badges)
	mux.HandleFunc("POST /api/progress/sync", auth(h.Profile.Sync))

	// Games and the play session
	mux.HandleFunc("GET /api/games", auth(h.Games.Games))
	mux.HandleFunc("POST /api/games/{game}/levels/{level}/start", auth(h.Games.StartGame))
	mux.HandleFunc("GET /api/session", auth(h.Games.Session))
	mux.HandleFunc("POST /api/session/answer", auth(h.Games.Answer))
	mux.HandleFunc("POST /api/session/canvas", auth(h.Games.UploadCanvas))
	mux.HandleFunc("POST /api/session/submit", auth(h.Games.Submit))
	mux.HandleFunc("DELETE /api/session", auth(h.Games.Abandon))

	// Learning materials
	mux.HandleFunc("GET /api/lessons", auth(h.Lessons.Lessons))
	mux.HandleFunc("GET /api/lessons/{category}/{level}", auth(h.Lessons.Lesson))
	mux.HandleFunc("POST /api/lessons/{category}/{level}/start", auth(h.Lessons.StartLesson))

	// Settings
	mux.HandleFunc("PUT /api/settings/profile", auth(h.Profile.UpdateProfile))
	mux.HandleFunc("PUT /api/settings/audio", auth(h.Profile.UpdateAudio))
	mux.HandleFunc("PUT /api/settings/notifications", auth(h.Profile.UpdateNotifications))
	mux.HandleFunc("POST /api/settings/password", auth(h.Profile.ChangePassword))
	mux.HandleFunc("POST /api/settings/reset-progress", auth(h.Profile.ResetProgress))
	mux.HandleFunc("DELETE /api/settings/data", auth(h.Profile.DeleteData))

	return mux
}
