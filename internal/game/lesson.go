package game

import (
	"fmt"
	"time"

	"edufunkids/internal/content"
	"edufunkids/internal/models"
)

// Lesson is the quiz that closes a learning-material level. Answers earn no
// session score; lesson points are awarded from the correct count.
type Lesson struct {
	lifecycle
	quiz
	category models.Category
	lesson   content.Lesson
}

// NewLesson builds the quiz for one level of a category
func NewLesson(cat models.Category, level int) (*Lesson, error) {
	lesson, ok := content.LessonFor(cat, level)
	if !ok {
		return nil, fmt.Errorf("%w: %s level %d", ErrInvalidLevel, cat, level)
	}

	g := &Lesson{
		lifecycle: lifecycle{state: NotStarted, level: level},
		category:  cat,
		lesson:    lesson,
	}
	for _, q := range lesson.Quiz {
		g.questions = append(g.questions, question{
			prompt:  q.Question,
			options: q.Options,
			answer:  q.Answer,
		})
	}
	return g, nil
}

func (g *Lesson) Category() models.Category { return g.category }

// Content is the learning material shown before the quiz
func (g *Lesson) Content() content.Lesson { return g.lesson }

func (g *Lesson) Start(now time.Time) error {
	if err := g.start(now); err != nil {
		return err
	}
	// A lesson without questions is complete as soon as it starts
	if g.finished() {
		g.end(now, false)
	}
	return nil
}

func (g *Lesson) Expire(now time.Time) bool { return false }

// Answer submits the index of the chosen option for the current question
func (g *Lesson) Answer(choice int, now time.Time) (Feedback, error) {
	if err := g.running(); err != nil {
		return Feedback{}, err
	}
	fb, err := g.answer(choice, 0)
	if err != nil {
		return Feedback{}, err
	}
	if fb.Finished {
		g.end(now, false)
	}
	return fb, nil
}

// SubmitAnswers answers every remaining question in order. An out-of-range
// choice counts as wrong.
func (g *Lesson) SubmitAnswers(choices []int, now time.Time) error {
	if err := g.running(); err != nil {
		return err
	}
	for _, choice := range choices {
		if g.finished() {
			break
		}
		cur := g.questions[g.current]
		if choice < 0 || choice >= len(cur.options) {
			g.current++
			continue
		}
		if _, err := g.answer(choice, 0); err != nil {
			return err
		}
	}
	if g.finished() {
		g.end(now, false)
	}
	return nil
}

// Correct is the number of right answers so far
func (g *Lesson) Correct() int { return g.correct }

func (g *Lesson) Total() int { return len(g.questions) }

func (g *Lesson) View(now time.Time) View {
	v := View{
		Category: g.category,
		Level:    g.level,
		State:    g.state,
		Correct:  g.correct,
		Answered: g.current,
		Total:    len(g.questions),
	}
	if g.state == InProgress {
		v.Challenge = g.challenge()
	}
	return v
}
