package handlers

import (
	"net/http"

	"edufunkids/internal/logger"
	"edufunkids/internal/security"
	"edufunkids/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With("handler", "AuthHandler"),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// signIn sets the auth cookie for browser clients and returns the token
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, status int, res *service.AuthResult) {
	http.SetCookie(w, security.NewCookie(r, security.AuthCookieName, res.Token, res.ExpiresAt))
	respondJSON(w, status, res)
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	res, err := h.authService.Register(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, "Registration failed", err)
		return
	}
	h.signIn(w, r, http.StatusCreated, res)
}

// Login checks email and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	res, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondWithServiceError(w, h.log, "Login failed", err)
		return
	}
	h.signIn(w, r, http.StatusOK, res)
}

// Demo signs in to the shared demo account
func (h *AuthHandler) Demo(w http.ResponseWriter, r *http.Request) {
	res, err := h.authService.Demo(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, "Demo login failed", err)
		return
	}
	h.signIn(w, r, http.StatusOK, res)
}

// Logout clears the auth cookie. Tokens are stateless and expire on their own.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.DeleteCookie(r, security.AuthCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword mails a reset link. The response never reveals whether the
// email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotPasswordRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), in.Email); err != nil {
		h.log.Error("Password reset request failed", "error", err)
	}
	w.WriteHeader(http.StatusAccepted)
}

// ResetPassword sets a new password using a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetPasswordRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		respondWithServiceError(w, h.log, "Password reset failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
