// Package scoring turns raw session performance into stars and points.
// Every function here is pure.
package scoring

import (
	"edufunkids/internal/content"
	"edufunkids/internal/models"
)

// Outcome is the scored result of one session
type Outcome struct {
	Stars  int `json:"stars"`
	Points int `json:"points"`
	// Score is what the session records as its level score and highest-score candidate
	Score int `json:"score"`
}

// Rules is the scoring descriptor of a single game
type Rules struct {
	Game     models.GameID
	MaxLevel int
	evaluate func(models.SessionResult) Outcome
}

// Evaluate clamps the result into range and scores it
func (r Rules) Evaluate(result models.SessionResult) Outcome {
	return r.evaluate(result.Normalize(r.MaxLevel))
}

var rules = map[models.GameID]Rules{
	models.GameLetterGuess: {Game: models.GameLetterGuess, MaxLevel: content.LevelsPerGame, evaluate: letterGuessOutcome},
	models.GameQuickMath:   {Game: models.GameQuickMath, MaxLevel: content.LevelsPerGame, evaluate: quickMathOutcome},
	models.GameColoring:    {Game: models.GameColoring, MaxLevel: content.LevelsPerGame, evaluate: coloringOutcome},
}

// For returns the scoring rules of a game
func For(game models.GameID) (Rules, bool) {
	r, ok := rules[game]
	return r, ok
}

// Per-question and per-session constants
const (
	LetterGuessQuestions     = 10
	LetterGuessPointsPerHit  = 10
	QuickMathQuestions       = 15
	QuickMathDurationSeconds = 60
	ColoringDurationSeconds  = 300
	LessonPointsPerAnswer    = 5

	coloringManualCap   = 150
	coloringTimeoutMin  = 10
	coloringCoverageMin = 50
)

// starsAtLeast returns 3 when value >= three, 2 when value >= two, otherwise 1.
// A completed level always earns at least one star.
func starsAtLeast(value, three, two float64) int {
	switch {
	case value >= three:
		return 3
	case value >= two:
		return 2
	default:
		return 1
	}
}

// LetterGuessStars rates accuracy percentage
func LetterGuessStars(accuracy float64) int {
	return starsAtLeast(accuracy, 80, 60)
}

// LetterGuessPoints is level*10 plus the session score scaled by stars/3
func LetterGuessPoints(level, score, stars int) int {
	return level*10 + score*stars/3
}

func letterGuessOutcome(r models.SessionResult) Outcome {
	accuracy := r.Accuracy
	if r.Total > 0 {
		accuracy = float64(r.Correct) / float64(r.Total) * 100
	}
	stars := LetterGuessStars(accuracy)
	return Outcome{
		Stars:  stars,
		Points: LetterGuessPoints(r.Level, r.Score, stars),
		Score:  r.Score,
	}
}

// QuickMathAnswerScore scores one correct answer given the seconds left on the countdown
func QuickMathAnswerScore(remainingSeconds, level int) int {
	return 10 + max(remainingSeconds, 0)/10 + level
}

// QuickMathStars rates the accumulated session score
func QuickMathStars(score int) int {
	return starsAtLeast(float64(score), 200, 150)
}

// QuickMathPoints is level*15 + score/10 + an accuracy bonus of up to 50
func QuickMathPoints(level, score, correct, total int) int {
	points := level*15 + score/10
	if correct > 0 && total > 0 {
		points += correct * 50 / total
	}
	return points
}

func quickMathOutcome(r models.SessionResult) Outcome {
	return Outcome{
		Stars:  QuickMathStars(r.Score),
		Points: QuickMathPoints(r.Level, r.Score, r.Correct, r.Total),
		Score:  r.Score,
	}
}

// ColoringStars rates the artistic score
func ColoringStars(artistic int) int {
	return starsAtLeast(float64(artistic), 80, 60)
}

// ColoringSubmitPoints scores a manually submitted drawing
func ColoringSubmitPoints(artistic, remainingSeconds int, coverage float64) int {
	total := artistic + max(remainingSeconds, 0)/6
	if coverage >= coloringCoverageMin {
		total += 20
	}
	return min(total, coloringManualCap)
}

// ColoringTimeoutPoints scores a drawing ended by the countdown
func ColoringTimeoutPoints(artistic int, coverage float64) int {
	total := artistic - 10
	if coverage >= coloringCoverageMin {
		total += 10
	}
	return max(total, coloringTimeoutMin)
}

func coloringOutcome(r models.SessionResult) Outcome {
	artistic := min(r.Score, 100)
	var final int
	if r.TimedOut {
		final = ColoringTimeoutPoints(artistic, r.Accuracy)
	} else {
		final = ColoringSubmitPoints(artistic, r.RemainingSeconds, r.Accuracy)
	}
	return Outcome{
		Stars:  ColoringStars(artistic),
		Points: final,
		Score:  final,
	}
}

// LessonPoints awards a fixed amount per correct quiz answer
func LessonPoints(correct int) int {
	return LessonPointsPerAnswer * max(correct, 0)
}
