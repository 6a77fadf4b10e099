package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"edufunkids/internal/game"
	"edufunkids/internal/logger"
	"edufunkids/internal/progress"
	"edufunkids/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			log.Error(logMsg, "status", status, "error", err)
		} else {
			log.Debug(logMsg, "status", status, "error", err)
		}
	}
	respondJSON(w, status, errorBody{Error: userMsg})
}

// clientErrors maps the errors a client can cause to a status and message.
// The first match wins.
var clientErrors = []struct {
	target error
	status int
	msg    string
}{
	{service.ErrNotAuthenticated, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{service.ErrEmailInUse, http.StatusConflict, "Email is already registered"},
	{service.ErrDemoDisabled, http.StatusForbidden, "Demo account is disabled"},
	{service.ErrInvalidResetToken, http.StatusBadRequest, "Reset link is invalid or has expired"},
	{service.ErrNoActiveSession, http.StatusNotFound, "No active session"},
	{game.ErrLevelLocked, http.StatusForbidden, "Level is locked"},
	{progress.ErrLevelLocked, http.StatusForbidden, "Level is locked"},
	{game.ErrInvalidLevel, http.StatusNotFound, "Level not found"},
	{progress.ErrUnknownGame, http.StatusNotFound, "Game not found"},
	{progress.ErrUnknownCategory, http.StatusNotFound, "Category not found"},
	{game.ErrSessionEnded, http.StatusConflict, "Session has ended"},
	{game.ErrSessionNotStarted, http.StatusConflict, "Session has not started"},
	{game.ErrUnsupported, http.StatusBadRequest, "Action not available for this session"},
	{game.ErrInvalidChoice, http.StatusBadRequest, "Invalid choice"},
}

// validationErrors carry their own message to the client
var validationErrors = []error{
	service.ErrInvalidEmail,
	service.ErrWeakPassword,
	service.ErrInvalidProfile,
}

// respondWithServiceError turns a service error into a response
func respondWithServiceError(w http.ResponseWriter, log *logger.Logger, logMsg string, err error) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			respondWithError(w, log, http.StatusBadRequest, err.Error(), logMsg, err)
			return
		}
	}
	for _, ce := range clientErrors {
		if errors.Is(err, ce.target) {
			respondWithError(w, log, ce.status, ce.msg, logMsg, err)
			return
		}
	}
	respondWithError(w, log, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
