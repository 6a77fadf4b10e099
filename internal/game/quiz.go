package game

type question struct {
	prompt  string
	image   string
	options []string
	answer  int
}

// quiz walks a fixed list of multiple-choice questions
type quiz struct {
	questions []question
	current   int
	correct   int
	score     int
}

func (q *quiz) finished() bool {
	return q.current >= len(q.questions)
}

func (q *quiz) challenge() *Challenge {
	if q.finished() {
		return nil
	}
	cur := q.questions[q.current]
	return &Challenge{
		Number:  q.current + 1,
		Total:   len(q.questions),
		Prompt:  cur.prompt,
		Image:   cur.image,
		Options: append([]string(nil), cur.options...),
	}
}

// answer records choice for the current question; points are added only
// when the choice is right
func (q *quiz) answer(choice, points int) (Feedback, error) {
	cur := q.questions[q.current]
	if choice < 0 || choice >= len(cur.options) {
		return Feedback{}, ErrInvalidChoice
	}

	fb := Feedback{Correct: choice == cur.answer, Answer: cur.options[cur.answer]}
	if fb.Correct {
		q.correct++
		q.score += points
		fb.Points = points
	}
	q.current++
	fb.Score = q.score
	fb.Finished = q.finished()
	return fb, nil
}

// shuffleOptions puts the right option among the distractors and returns its index
func shuffleOptions(rng Random, right string, distractors []string) ([]string, int) {
	options := append([]string{right}, distractors...)
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	for i, opt := range options {
		if opt == right {
			return options, i
		}
	}
	return options, 0
}
