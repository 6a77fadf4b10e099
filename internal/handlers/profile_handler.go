package handlers

import (
	"net/http"

	"edufunkids/internal/achievements"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/service"
)

// ProfileHandler serves the profile, dashboard and settings endpoints
type ProfileHandler struct {
	progress    *service.ProgressService
	settings    *service.SettingsService
	authService *service.AuthService
	log         *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(progress *service.ProgressService, settings *service.SettingsService, authService *service.AuthService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		progress:    progress,
		settings:    settings,
		authService: authService,
		log:         log.With("handler", "ProfileHandler"),
	}
}

// savedResponse tells the client whether a change reached storage
type savedResponse struct {
	Saved  bool   `json:"saved"`
	Notice string `json:"notice,omitempty"`
}

func saved(ok bool) savedResponse {
	if ok {
		return savedResponse{Saved: true}
	}
	return savedResponse{Notice: service.SaveFailedNotice}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.progress.Profile(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get profile", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.progress.Dashboard(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// Badges returns the badge catalogue
func (h *ProfileHandler) Badges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, achievements.Catalogue())
}

// Sync retries a profile write that failed earlier
func (h *ProfileHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ok, err := h.progress.Sync(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to sync progress", err)
		return
	}
	respondJSON(w, http.StatusOK, saved(ok))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.ChildProfileInput
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	ok, err := h.settings.UpdateChildProfile(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to update profile", err)
		return
	}
	respondJSON(w, http.StatusOK, saved(ok))
}

func (h *ProfileHandler) UpdateAudio(w http.ResponseWriter, r *http.Request) {
	var in models.AudioSettings
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	ok, err := h.settings.UpdateAudio(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to update audio settings", err)
		return
	}
	respondJSON(w, http.StatusOK, saved(ok))
}

func (h *ProfileHandler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var in models.NotificationSettings
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	ok, err := h.settings.UpdateNotifications(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to update notification settings", err)
		return
	}
	respondJSON(w, http.StatusOK, saved(ok))
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	err := h.authService.ChangePassword(r.Context(), UserIDFromContext(r.Context()), in.CurrentPassword, in.NewPassword)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	ok, err := h.settings.ResetProgress(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to reset progress", err)
		return
	}
	respondJSON(w, http.StatusOK, saved(ok))
}

// DeleteData wipes the child's profile. The account stays, so the next
// request starts again from a default profile.
func (h *ProfileHandler) DeleteData(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.DeleteData(r.Context(), UserIDFromContext(r.Context())); err != nil {
		respondWithServiceError(w, h.log, "Failed to delete data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
