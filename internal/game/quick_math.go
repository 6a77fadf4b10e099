package game

import (
	"fmt"
	"strconv"
	"time"

	"edufunkids/internal/content"
	"edufunkids/internal/models"
	"edufunkids/internal/scoring"
)

// QuickMath is a timed round of arithmetic questions
type QuickMath struct {
	lifecycle
	quiz
	clock Countdown
}

// NewQuickMath builds a quick-math session for level
func NewQuickMath(level int, rng Random) (*QuickMath, error) {
	if level < 1 || level > content.LevelsPerGame {
		return nil, fmt.Errorf("%w: %s level %d", ErrInvalidLevel, models.GameQuickMath, level)
	}

	spec := content.QuickMathLevels[level-1]
	g := &QuickMath{
		lifecycle: lifecycle{state: NotStarted, level: level},
		clock:     NewCountdown(scoring.QuickMathDurationSeconds * time.Second),
	}
	for range scoring.QuickMathQuestions {
		g.questions = append(g.questions, mathQuestion(rng, spec))
	}
	return g, nil
}

func mathQuestion(rng Random, spec content.MathLevel) question {
	op := spec.Operation
	if op == content.OpMixed {
		op = content.OpAdd
		if rng.IntN(2) == 1 {
			op = content.OpSubtract
		}
	}

	var a, b, result, spread int
	switch op {
	case content.OpSubtract:
		// b never exceeds a so the result stays non-negative
		a = spec.Min + rng.IntN(spec.Max-spec.Min+1)
		b = spec.Min + rng.IntN(a-spec.Min+1)
		result = a - b
		spread = 5
	default:
		a = spec.Min + rng.IntN(spec.Max-spec.Min+1)
		b = spec.Min + rng.IntN(spec.Max-spec.Min+1)
		result = a + b
		spread = 10
	}

	seen := map[int]bool{result: true}
	var distractors []string
	for len(distractors) < 3 {
		wrong := result + rng.IntN(spread*2) - spread
		if wrong < 0 {
			wrong = -wrong
		}
		if seen[wrong] {
			continue
		}
		seen[wrong] = true
		distractors = append(distractors, strconv.Itoa(wrong))
	}

	options, answer := shuffleOptions(rng, strconv.Itoa(result), distractors)
	return question{
		prompt:  fmt.Sprintf("%d %s %d = ?", a, op, b),
		options: options,
		answer:  answer,
	}
}

// Start begins the round and its countdown
func (g *QuickMath) Start(now time.Time) error {
	if g.state == NotStarted {
		g.clock.Start(now)
	}
	return g.start(now)
}

// Deadline is when the countdown runs out
func (g *QuickMath) Deadline() time.Time { return g.clock.Deadline() }

// Expire ends the round if the countdown has reached zero
func (g *QuickMath) Expire(now time.Time) bool {
	if g.state != InProgress || !g.clock.Expired(now) {
		return false
	}
	g.end(now, true)
	return true
}

// Answer submits the index of the chosen option. A correct answer is worth
// more the sooner it is given.
func (g *QuickMath) Answer(choice int, now time.Time) (Feedback, error) {
	if g.Expire(now) {
		return Feedback{}, ErrSessionEnded
	}
	if err := g.running(); err != nil {
		return Feedback{}, err
	}

	points := scoring.QuickMathAnswerScore(g.clock.RemainingSeconds(now), g.level)
	fb, err := g.answer(choice, points)
	if err != nil {
		return Feedback{}, err
	}
	if fb.Finished {
		g.end(now, false)
	}
	return fb, nil
}

// Result is the session outcome; valid once the session ended
func (g *QuickMath) Result() models.SessionResult {
	total := len(g.questions)
	return models.SessionResult{
		Level:            g.level,
		Score:            g.score,
		Accuracy:         accuracy(g.correct, total),
		RemainingSeconds: g.clock.RemainingSeconds(g.endedAt),
		Correct:          g.correct,
		Total:            total,
		TimedOut:         g.timedOut,
	}
}

func (g *QuickMath) View(now time.Time) View {
	remaining := g.clock.RemainingSeconds(now)
	if g.state == Ended {
		remaining = g.clock.RemainingSeconds(g.endedAt)
	}
	v := View{
		Game:             models.GameQuickMath,
		Level:            g.level,
		State:            g.state,
		Score:            g.score,
		Correct:          g.correct,
		Answered:         g.current,
		Total:            len(g.questions),
		RemainingSeconds: &remaining,
		TimedOut:         g.timedOut,
	}
	if g.state == InProgress {
		v.Challenge = g.challenge()
	}
	return v
}
