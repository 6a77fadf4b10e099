package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"edufunkids/internal/logger"
	"edufunkids/internal/security"
	"edufunkids/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserIDContextKey ContextKey = "user_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	log         *logger.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, log *logger.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		log:         log.With("component", "Middleware"),
	}
}

// accessToken reads a bearer token, falling back to the auth cookie
func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(security.AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid access token and puts the
// user id into the request context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.authService.Authenticate(accessToken(r))
		if err != nil {
			if _, cookieErr := r.Cookie(security.AuthCookieName); cookieErr == nil {
				http.SetCookie(w, security.DeleteCookie(r, security.AuthCookieName))
			}
			respondWithServiceError(w, m.log, "Authentication failed", err)
			return
		}
		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.log.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			respondJSON(w, http.StatusTooManyRequests, errorBody{Error: ErrTooManyRequests})
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs every request with its status and duration
func Logging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// UserIDFromContext retrieves the authenticated user id
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDContextKey).(string)
	return userID
}
