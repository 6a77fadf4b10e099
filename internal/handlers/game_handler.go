package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/scoring"
	"edufunkids/internal/service"
)

// GameHandler serves the game list and the play session endpoints
type GameHandler struct {
	progress      *service.ProgressService
	uploadMaxSize int64
	log           *logger.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(progress *service.ProgressService, uploadMaxSize int64, log *logger.Logger) *GameHandler {
	return &GameHandler{
		progress:      progress,
		uploadMaxSize: uploadMaxSize,
		log:           log.With("handler", "GameHandler"),
	}
}

type answerRequest struct {
	Choice *int `json:"choice"`
}

type submitRequest struct {
	Answers []int `json:"answers"`
}

func pathLevel(r *http.Request) (int, bool) {
	level, err := strconv.Atoi(r.PathValue("level"))
	return level, err == nil
}

// Games lists the games with their level map
func (h *GameHandler) Games(w http.ResponseWriter, r *http.Request) {
	games, err := h.progress.Games(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to list games", err)
		return
	}
	respondJSON(w, http.StatusOK, games)
}

// StartGame starts a game level and returns the first challenge
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	level, ok := pathLevel(r)
	if !ok {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidLevel, "", nil)
		return
	}
	gameID := models.GameID(r.PathValue("game"))

	state, err := h.progress.StartGame(r.Context(), UserIDFromContext(r.Context()), gameID, level)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to start game", err)
		return
	}
	respondJSON(w, http.StatusCreated, state)
}

// Session returns the current session, including a finished one's outcome
func (h *GameHandler) Session(w http.ResponseWriter, r *http.Request) {
	state, err := h.progress.CurrentSession(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get session", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Answer submits the chosen option of the current challenge
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var in answerRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil || in.Choice == nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	res, err := h.progress.Answer(r.Context(), UserIDFromContext(r.Context()), *in.Choice)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to answer", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// UploadCanvas accepts a PNG, JPEG or WebP snapshot of the coloring canvas
func (h *GameHandler) UploadCanvas(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, h.log, http.StatusRequestEntityTooLarge, "Canvas image is too large", "", err)
			return
		}
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	img, format, err := scoring.DecodeCanvas(bytes.NewReader(data))
	if errors.Is(err, scoring.ErrCanvasTooLarge) {
		respondWithError(w, h.log, http.StatusRequestEntityTooLarge, "Canvas image is too large", "", err)
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, "Canvas must be a PNG, JPEG or WebP image", "", err)
		return
	}

	report, err := h.progress.UploadCanvas(r.Context(), UserIDFromContext(r.Context()), img)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to upload canvas", err)
		return
	}
	h.log.Debug("Canvas uploaded", "format", format, "coverage", report.Coverage)
	respondJSON(w, http.StatusOK, report)
}

// Submit ends a coloring session or answers a lesson quiz. The body is
// optional for coloring.
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in submitRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	state, err := h.progress.Submit(r.Context(), UserIDFromContext(r.Context()), in.Answers)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to submit session", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Abandon discards the current session
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.progress.Abandon(r.Context(), UserIDFromContext(r.Context())); err != nil {
		respondWithServiceError(w, h.log, "Failed to abandon session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
