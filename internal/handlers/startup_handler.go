package handlers

import (
	"net/http"
	"sync"
)

// Startup step names reported by the server while it initializes
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepAudio      = "Generating audio files"
)

// StartupStep is one initialization step
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

type startupReport struct {
	Status   string        `json:"status"`
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// NewStartupStatus tracks the named steps, none completed
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	if len(s.steps) > 0 {
		s.progress = (completed * 100) / len(s.steps)
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Health reports readiness: 200 once ready, 503 with the step list before
func (s *StartupStatus) Health(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := startupReport{
		Status:   "starting",
		Ready:    s.ready,
		Current:  s.current,
		Progress: s.progress,
		Steps:    append([]StartupStep(nil), s.steps...),
	}
	s.mu.RUnlock()

	status := http.StatusServiceUnavailable
	if report.Ready {
		report.Status = "ok"
		status = http.StatusOK
	}
	respondJSON(w, status, report)
}
