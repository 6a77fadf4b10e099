package game

import (
	"fmt"
	"image"
	"time"

	"edufunkids/internal/content"
	"edufunkids/internal/models"
	"edufunkids/internal/scoring"
)

// ColoringView is the picture and palette of a coloring session
type ColoringView struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Outline     string                 `json:"outline"`
	Hints       []string               `json:"hints"`
	Palette     []content.PaletteColor `json:"palette"`
	HasCanvas   bool                   `json:"hasCanvas"`
	Report      *scoring.CanvasReport  `json:"report,omitempty"`
}

// Coloring is a free drawing session judged on the final canvas
type Coloring struct {
	lifecycle
	clock   Countdown
	picture content.ColoringLevel
	canvas  image.Image
	report  scoring.CanvasReport
}

// NewColoring builds a coloring session for level
func NewColoring(level int) (*Coloring, error) {
	if level < 1 || level > content.LevelsPerGame {
		return nil, fmt.Errorf("%w: %s level %d", ErrInvalidLevel, models.GameColoring, level)
	}
	return &Coloring{
		lifecycle: lifecycle{state: NotStarted, level: level},
		clock:     NewCountdown(scoring.ColoringDurationSeconds * time.Second),
		picture:   content.ColoringLevels[level-1],
	}, nil
}

func (g *Coloring) Start(now time.Time) error {
	if g.state == NotStarted {
		g.clock.Start(now)
	}
	return g.start(now)
}

// Deadline is when the countdown runs out
func (g *Coloring) Deadline() time.Time { return g.clock.Deadline() }

// UploadCanvas replaces the current drawing. The latest upload is what gets
// judged when the session ends.
func (g *Coloring) UploadCanvas(img image.Image, now time.Time) (scoring.CanvasReport, error) {
	if g.Expire(now) {
		return scoring.CanvasReport{}, ErrSessionEnded
	}
	if err := g.running(); err != nil {
		return scoring.CanvasReport{}, err
	}
	g.canvas = img
	g.report = scoring.AnalyzeCanvas(img)
	return g.report, nil
}

// Submit finishes the drawing before the countdown runs out
func (g *Coloring) Submit(now time.Time) (models.SessionResult, error) {
	if g.Expire(now) {
		return models.SessionResult{}, ErrSessionEnded
	}
	if err := g.running(); err != nil {
		return models.SessionResult{}, err
	}
	g.end(now, false)
	return g.Result(), nil
}

// Expire ends the session when the countdown has reached zero, judging
// whatever was drawn so far
func (g *Coloring) Expire(now time.Time) bool {
	if g.state != InProgress || !g.clock.Expired(now) {
		return false
	}
	g.end(now, true)
	return true
}

// Report is the analysis of the latest canvas
func (g *Coloring) Report() scoring.CanvasReport { return g.report }

// Result carries the artistic score as Score and canvas coverage as Accuracy
func (g *Coloring) Result() models.SessionResult {
	return models.SessionResult{
		Level:            g.level,
		Score:            g.report.ArtisticScore,
		Accuracy:         g.report.Coverage,
		RemainingSeconds: g.clock.RemainingSeconds(g.endedAt),
		TimedOut:         g.timedOut,
	}
}

func (g *Coloring) View(now time.Time) View {
	remaining := g.clock.RemainingSeconds(now)
	if g.state == Ended {
		remaining = g.clock.RemainingSeconds(g.endedAt)
	}
	cv := &ColoringView{
		Title:       g.picture.Title,
		Description: g.picture.Description,
		Outline:     g.picture.Outline,
		Hints:       g.picture.Hints,
		Palette:     content.Palette,
		HasCanvas:   g.canvas != nil,
	}
	if g.canvas != nil {
		report := g.report
		cv.Report = &report
	}
	return View{
		Game:             models.GameColoring,
		Level:            g.level,
		State:            g.state,
		Score:            g.report.ArtisticScore,
		RemainingSeconds: &remaining,
		TimedOut:         g.timedOut,
		Coloring:         cv,
	}
}
