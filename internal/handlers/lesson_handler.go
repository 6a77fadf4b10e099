package handlers

import (
	"net/http"

	"edufunkids/internal/audio"
	"edufunkids/internal/content"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/service"
)

// LessonHandler serves the learning materials
type LessonHandler struct {
	progress *service.ProgressService
	tts      *audio.TTSService
	log      *logger.Logger
}

// NewLessonHandler creates a new lesson handler. tts may be nil, in which
// case items carry no audio URL.
func NewLessonHandler(progress *service.ProgressService, tts *audio.TTSService, log *logger.Logger) *LessonHandler {
	return &LessonHandler{
		progress: progress,
		tts:      tts,
		log:      log.With("handler", "LessonHandler"),
	}
}

type lessonItemView struct {
	content.LessonItem
	AudioURL string `json:"audioUrl,omitempty"`
}

type lessonStepView struct {
	Title   string           `json:"title"`
	Kind    string           `json:"kind"`
	Content string           `json:"content"`
	Items   []lessonItemView `json:"items"`
}

// quizQuestionView hides the answer index
type quizQuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type lessonView struct {
	Category    models.Category    `json:"category"`
	Level       int                `json:"level"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Steps       []lessonStepView   `json:"steps"`
	Quiz        []quizQuestionView `json:"quiz"`
}

func (h *LessonHandler) view(cat models.Category, level int, lesson content.Lesson) lessonView {
	v := lessonView{
		Category:    cat,
		Level:       level,
		Title:       lesson.Title,
		Description: lesson.Description,
		Steps:       make([]lessonStepView, 0, len(lesson.Steps)),
		Quiz:        make([]quizQuestionView, 0, len(lesson.Quiz)),
	}
	for _, step := range lesson.Steps {
		sv := lessonStepView{Title: step.Title, Kind: step.Kind, Content: step.Content}
		for _, item := range step.Items {
			iv := lessonItemView{LessonItem: item}
			if h.tts != nil && item.Speech != "" {
				iv.AudioURL = h.tts.URL(item.Speech)
			}
			sv.Items = append(sv.Items, iv)
		}
		v.Steps = append(v.Steps, sv)
	}
	for _, q := range lesson.Quiz {
		v.Quiz = append(v.Quiz, quizQuestionView{Question: q.Question, Options: q.Options})
	}
	return v
}

// Lessons lists the categories with their unlock state
func (h *LessonHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.progress.Lessons(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to list lessons", err)
		return
	}
	respondJSON(w, http.StatusOK, lessons)
}

// Lesson returns the steps and quiz of an unlocked lesson
func (h *LessonHandler) Lesson(w http.ResponseWriter, r *http.Request) {
	level, ok := pathLevel(r)
	if !ok {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidLevel, "", nil)
		return
	}
	cat := models.Category(r.PathValue("category"))

	lesson, err := h.progress.Lesson(r.Context(), UserIDFromContext(r.Context()), cat, level)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get lesson", err)
		return
	}
	respondJSON(w, http.StatusOK, h.view(cat, level, lesson))
}

// StartLesson starts the lesson quiz as a session
func (h *LessonHandler) StartLesson(w http.ResponseWriter, r *http.Request) {
	level, ok := pathLevel(r)
	if !ok {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidLevel, "", nil)
		return
	}
	cat := models.Category(r.PathValue("category"))

	state, err := h.progress.StartLesson(r.Context(), UserIDFromContext(r.Context()), cat, level)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to start lesson", err)
		return
	}
	respondJSON(w, http.StatusCreated, state)
}
