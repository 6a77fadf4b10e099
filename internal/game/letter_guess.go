package game

import (
	"fmt"
	"time"

	"edufunkids/internal/content"
	"edufunkids/internal/models"
	"edufunkids/internal/scoring"
)

const letterGuessPrompt = "Huruf apakah yang dimulai benda ini?"

// LetterGuess asks which object is shown, using the letters of its level
type LetterGuess struct {
	lifecycle
	quiz
}

// NewLetterGuess builds a letter-guess session for level
func NewLetterGuess(level int, rng Random) (*LetterGuess, error) {
	if level < 1 || level > content.LevelsPerGame {
		return nil, fmt.Errorf("%w: %s level %d", ErrInvalidLevel, models.GameLetterGuess, level)
	}

	words := content.LetterGuessLevels[level-1]
	g := &LetterGuess{lifecycle: lifecycle{state: NotStarted, level: level}}

	var unused []int
	for range scoring.LetterGuessQuestions {
		// Every word of the level is asked once before any repeats
		if len(unused) == 0 {
			unused = make([]int, len(words))
			for i := range unused {
				unused[i] = i
			}
		}
		pick := rng.IntN(len(unused))
		word := words[unused[pick]]
		unused = append(unused[:pick], unused[pick+1:]...)

		options, answer := shuffleOptions(rng, word.Name, letterDistractors(rng, word, words))
		g.questions = append(g.questions, question{
			prompt:  letterGuessPrompt,
			image:   word.Image,
			options: options,
			answer:  answer,
		})
	}
	return g, nil
}

// letterDistractors picks three wrong names, preferring the same level and
// topping up from the other levels
func letterDistractors(rng Random, right content.PictureWord, level []content.PictureWord) []string {
	const want = 3
	var pool []string
	for _, w := range level {
		if w.Name != right.Name {
			pool = append(pool, w.Name)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) >= want {
		return pool[:want]
	}

	seen := map[string]bool{right.Name: true}
	for _, name := range pool {
		seen[name] = true
	}
	var extra []string
	for _, w := range content.AllPictureWords() {
		if !seen[w.Name] {
			seen[w.Name] = true
			extra = append(extra, w.Name)
		}
	}
	rng.Shuffle(len(extra), func(i, j int) { extra[i], extra[j] = extra[j], extra[i] })
	return append(pool, extra[:min(want-len(pool), len(extra))]...)
}

func (g *LetterGuess) Start(now time.Time) error { return g.start(now) }

// Expire is a no-op; letter-guess has no countdown
func (g *LetterGuess) Expire(now time.Time) bool { return false }

// Answer submits the index of the chosen option
func (g *LetterGuess) Answer(choice int, now time.Time) (Feedback, error) {
	if err := g.running(); err != nil {
		return Feedback{}, err
	}
	fb, err := g.answer(choice, scoring.LetterGuessPointsPerHit)
	if err != nil {
		return Feedback{}, err
	}
	if fb.Finished {
		g.end(now, false)
	}
	return fb, nil
}

// Result is the session outcome; valid once the session ended
func (g *LetterGuess) Result() models.SessionResult {
	total := len(g.questions)
	return models.SessionResult{
		Level:    g.level,
		Score:    g.score,
		Accuracy: accuracy(g.correct, total),
		Correct:  g.correct,
		Total:    total,
	}
}

func (g *LetterGuess) View(now time.Time) View {
	v := View{
		Game:     models.GameLetterGuess,
		Level:    g.level,
		State:    g.state,
		Score:    g.score,
		Correct:  g.correct,
		Answered: g.current,
		Total:    len(g.questions),
	}
	if g.state == InProgress {
		v.Challenge = g.challenge()
	}
	return v
}
