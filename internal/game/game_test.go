package game

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"

	"edufunkids/internal/content"
	"edufunkids/internal/models"
	"edufunkids/internal/scoring"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testRand() Random {
	return rand.New(rand.NewPCG(1, 2))
}

func TestCountdown(t *testing.T) {
	c := NewCountdown(60 * time.Second)
	if got := c.RemainingSeconds(t0); got != 60 {
		t.Errorf("RemainingSeconds() before start = %v, want 60", got)
	}
	if c.Expired(t0.Add(time.Hour)) {
		t.Error("Expired() should be false before start")
	}

	c.Start(t0)
	tests := []struct {
		at      time.Duration
		want    int
		expired bool
	}{
		{0, 60, false},
		{500 * time.Millisecond, 60, false},
		{10 * time.Second, 50, false},
		{59*time.Second + time.Millisecond, 1, false},
		{60 * time.Second, 0, true},
		{90 * time.Second, 0, true},
	}
	for _, tt := range tests {
		now := t0.Add(tt.at)
		if got := c.RemainingSeconds(now); got != tt.want {
			t.Errorf("RemainingSeconds(+%v) = %v, want %v", tt.at, got, tt.want)
		}
		if got := c.Expired(now); got != tt.expired {
			t.Errorf("Expired(+%v) = %v, want %v", tt.at, got, tt.expired)
		}
	}
	if !c.Deadline().Equal(t0.Add(time.Minute)) {
		t.Errorf("Deadline() = %v, want %v", c.Deadline(), t0.Add(time.Minute))
	}
}

func TestInvalidLevels(t *testing.T) {
	for _, level := range []int{0, 6, -1} {
		if _, err := NewLetterGuess(level, testRand()); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("NewLetterGuess(%d) error = %v, want ErrInvalidLevel", level, err)
		}
		if _, err := NewQuickMath(level, testRand()); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("NewQuickMath(%d) error = %v, want ErrInvalidLevel", level, err)
		}
		if _, err := NewColoring(level); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("NewColoring(%d) error = %v, want ErrInvalidLevel", level, err)
		}
	}
	if _, err := NewLesson(models.CategoryLetters, 4); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("NewLesson(huruf, 4) error = %v, want ErrInvalidLevel", err)
	}
	if _, err := NewLesson("unknown", 1); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("NewLesson(unknown) error = %v, want ErrInvalidLevel", err)
	}
}

func checkOptions(t *testing.T, q question) {
	t.Helper()
	if len(q.options) != 4 {
		t.Fatalf("len(options) = %d, want 4: %v", len(q.options), q.options)
	}
	seen := map[string]bool{}
	for _, opt := range q.options {
		if seen[opt] {
			t.Errorf("duplicate option %q in %v", opt, q.options)
		}
		seen[opt] = true
	}
	if q.answer < 0 || q.answer >= len(q.options) {
		t.Errorf("answer index %d out of range", q.answer)
	}
}

func TestLetterGuessQuestions(t *testing.T) {
	for level := 1; level <= content.LevelsPerGame; level++ {
		g, err := NewLetterGuess(level, testRand())
		if err != nil {
			t.Fatalf("NewLetterGuess(%d) error = %v", level, err)
		}
		if len(g.questions) != scoring.LetterGuessQuestions {
			t.Fatalf("level %d: %d questions, want %d", level, len(g.questions), scoring.LetterGuessQuestions)
		}

		words := content.LetterGuessLevels[level-1]
		byName := map[string]content.PictureWord{}
		for _, w := range words {
			byName[w.Name] = w
		}

		// The first pass through the level never repeats a word
		firstPass := map[string]bool{}
		for i, q := range g.questions {
			checkOptions(t, q)
			right := q.options[q.answer]
			w, ok := byName[right]
			if !ok {
				t.Errorf("level %d question %d: answer %q is not a word of the level", level, i, right)
				continue
			}
			if q.image != w.Image {
				t.Errorf("image = %v, want %v", q.image, w.Image)
			}
			if i < len(words) {
				if firstPass[right] {
					t.Errorf("level %d: %q repeated before every word was asked", level, right)
				}
				firstPass[right] = true
			}
		}
	}
}

func TestLetterGuessPlay(t *testing.T) {
	g, _ := NewLetterGuess(1, testRand())

	if _, err := g.Answer(0, t0); !errors.Is(err, ErrSessionNotStarted) {
		t.Errorf("Answer() before Start error = %v, want ErrSessionNotStarted", err)
	}
	if err := g.Start(t0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if v := g.View(t0); v.Challenge == nil || v.Challenge.Number != 1 || v.RemainingSeconds != nil {
		t.Errorf("View() = %+v, want first challenge without a clock", v)
	}
	if _, err := g.Answer(7, t0); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("Answer(7) error = %v, want ErrInvalidChoice", err)
	}

	// Seven right, three wrong
	var fb Feedback
	for i := range scoring.LetterGuessQuestions {
		q := g.questions[g.current]
		choice := q.answer
		if i >= 7 {
			choice = (q.answer + 1) % len(q.options)
		}
		var err error
		fb, err = g.Answer(choice, t0.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
	}
	if !fb.Finished || g.State() != Ended {
		t.Fatalf("State() = %v, want ended", g.State())
	}
	if g.Expire(t0.Add(time.Hour)) {
		t.Error("Expire() = true for an untimed game")
	}

	got := g.Result()
	want := models.SessionResult{Level: 1, Score: 70, Accuracy: 70, Correct: 7, Total: 10}
	if got != want {
		t.Errorf("Result() = %+v, want %+v", got, want)
	}
	if _, err := g.Answer(0, t0); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Answer() after end error = %v, want ErrSessionEnded", err)
	}
	if err := g.Start(t0); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Start() after end error = %v, want ErrSessionEnded", err)
	}
}

func parseMath(t *testing.T, prompt string) (a int, op string, b int) {
	t.Helper()
	parts := strings.Fields(prompt)
	if len(parts) != 5 {
		t.Fatalf("prompt %q has unexpected shape", prompt)
	}
	a, _ = strconv.Atoi(parts[0])
	b, _ = strconv.Atoi(parts[2])
	return a, parts[1], b
}

func TestQuickMathQuestions(t *testing.T) {
	for level := 1; level <= content.LevelsPerGame; level++ {
		spec := content.QuickMathLevels[level-1]
		g, _ := NewQuickMath(level, testRand())
		if len(g.questions) != scoring.QuickMathQuestions {
			t.Fatalf("level %d: %d questions, want %d", level, len(g.questions), scoring.QuickMathQuestions)
		}
		for _, q := range g.questions {
			checkOptions(t, q)
			a, op, b := parseMath(t, q.prompt)
			if a < spec.Min || a > spec.Max || b < spec.Min || b > spec.Max {
				t.Errorf("level %d: operands of %q outside [%d,%d]", level, q.prompt, spec.Min, spec.Max)
			}
			var want int
			switch op {
			case "+":
				want = a + b
			case "-":
				want = a - b
			default:
				t.Fatalf("unknown operator in %q", q.prompt)
			}
			if spec.Operation != content.OpMixed && op != string(spec.Operation) {
				t.Errorf("level %d: operator %q, want %q", level, op, spec.Operation)
			}
			if want < 0 {
				t.Errorf("%q has a negative result", q.prompt)
			}
			if got := q.options[q.answer]; got != strconv.Itoa(want) {
				t.Errorf("%q answer = %v, want %v", q.prompt, got, want)
			}
			for _, opt := range q.options {
				if n, err := strconv.Atoi(opt); err != nil || n < 0 {
					t.Errorf("option %q is not a non-negative number", opt)
				}
			}
		}
	}
}

func TestQuickMathScoring(t *testing.T) {
	g, _ := NewQuickMath(2, testRand())
	if err := g.Start(t0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	q := g.questions[0]
	fb, err := g.Answer(q.answer, t0.Add(5*time.Second))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	// 55 seconds left at level 2
	if fb.Points != 17 || fb.Score != 17 {
		t.Errorf("Answer() = %+v, want 17 points", fb)
	}

	q = g.questions[1]
	fb, _ = g.Answer((q.answer+1)%4, t0.Add(10*time.Second))
	if fb.Correct || fb.Points != 0 || fb.Score != 17 {
		t.Errorf("wrong Answer() = %+v, want no points", fb)
	}

	if g.Expire(t0.Add(59 * time.Second)) {
		t.Error("Expire() before the deadline = true")
	}
	if _, err := g.Answer(0, t0.Add(60*time.Second)); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Answer() at deadline error = %v, want ErrSessionEnded", err)
	}

	got := g.Result()
	if !got.TimedOut || got.RemainingSeconds != 0 || got.Correct != 1 || got.Total != scoring.QuickMathQuestions || got.Score != 17 {
		t.Errorf("Result() = %+v", got)
	}
	if v := g.View(t0.Add(2 * time.Minute)); *v.RemainingSeconds != 0 || v.Challenge != nil {
		t.Errorf("View() after timeout = %+v", v)
	}
}

func TestQuickMathFinishBeforeDeadline(t *testing.T) {
	g, _ := NewQuickMath(1, testRand())
	g.Start(t0)
	for i := range scoring.QuickMathQuestions {
		q := g.questions[g.current]
		if _, err := g.Answer(q.answer, t0.Add(time.Duration(i+1)*time.Second)); err != nil {
			t.Fatalf("Answer(%d) error = %v", i, err)
		}
	}
	got := g.Result()
	if got.TimedOut || got.RemainingSeconds != 45 || got.Correct != 15 || got.Accuracy != 100 {
		t.Errorf("Result() = %+v", got)
	}
	if g.Expire(t0.Add(time.Hour)) {
		t.Error("Expire() on an ended session = true")
	}
}

func solid(c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestColoringSubmit(t *testing.T) {
	g, _ := NewColoring(1)
	if _, err := g.UploadCanvas(solid(color.White), t0); !errors.Is(err, ErrSessionNotStarted) {
		t.Errorf("UploadCanvas() before Start error = %v, want ErrSessionNotStarted", err)
	}
	g.Start(t0)

	v := g.View(t0)
	if v.Coloring == nil || v.Coloring.Title != content.ColoringLevels[0].Title || v.Coloring.HasCanvas {
		t.Errorf("View().Coloring = %+v", v.Coloring)
	}
	if *v.RemainingSeconds != scoring.ColoringDurationSeconds {
		t.Errorf("RemainingSeconds = %v, want %v", *v.RemainingSeconds, scoring.ColoringDurationSeconds)
	}

	report, err := g.UploadCanvas(solid(color.NRGBA{255, 0, 0, 255}), t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("UploadCanvas() error = %v", err)
	}
	if report.ArtisticScore != 73 || report.Coverage != 100 {
		t.Errorf("UploadCanvas() report = %+v", report)
	}

	got, err := g.Submit(t0.Add(2 * time.Minute))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want := models.SessionResult{Level: 1, Score: 73, Accuracy: 100, RemainingSeconds: 180}
	if got != want {
		t.Errorf("Submit() = %+v, want %+v", got, want)
	}
	if _, err := g.Submit(t0.Add(3 * time.Minute)); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("second Submit() error = %v, want ErrSessionEnded", err)
	}
}

func TestColoringTimeout(t *testing.T) {
	g, _ := NewColoring(3)
	g.Start(t0)

	deadline := t0.Add(scoring.ColoringDurationSeconds * time.Second)
	if !g.Deadline().Equal(deadline) {
		t.Errorf("Deadline() = %v, want %v", g.Deadline(), deadline)
	}
	if !g.Expire(deadline) {
		t.Fatal("Expire() at deadline = false")
	}
	got := g.Result()
	want := models.SessionResult{Level: 3, TimedOut: true}
	if got != want {
		t.Errorf("Result() = %+v, want %+v", got, want)
	}
	if _, err := g.UploadCanvas(solid(color.Black), deadline); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("UploadCanvas() after timeout error = %v, want ErrSessionEnded", err)
	}
}

func TestLessonQuiz(t *testing.T) {
	g, err := NewLesson(models.CategoryLetters, 1)
	if err != nil {
		t.Fatalf("NewLesson() error = %v", err)
	}
	if g.Total() != 3 || g.Content().Number != 1 {
		t.Fatalf("Total() = %d, Content().Number = %d", g.Total(), g.Content().Number)
	}
	if err := g.SubmitAnswers([]int{0}, t0); !errors.Is(err, ErrSessionNotStarted) {
		t.Errorf("SubmitAnswers() before Start error = %v, want ErrSessionNotStarted", err)
	}
	g.Start(t0)

	fb, err := g.Answer(0, t0)
	if err != nil || !fb.Correct || fb.Points != 0 {
		t.Fatalf("Answer(0) = %+v, %v", fb, err)
	}
	// second answer wrong, third out of range
	if err := g.SubmitAnswers([]int{0, 9}, t0); err != nil {
		t.Fatalf("SubmitAnswers() error = %v", err)
	}
	if g.State() != Ended || g.Correct() != 1 {
		t.Errorf("State() = %v, Correct() = %d, want ended with 1", g.State(), g.Correct())
	}
	if v := g.View(t0); v.Category != models.CategoryLetters || v.Answered != 3 {
		t.Errorf("View() = %+v", v)
	}
}

func TestLessonAllCorrect(t *testing.T) {
	g, _ := NewLesson(models.CategoryLetters, 1)
	g.Start(t0)
	if err := g.SubmitAnswers([]int{0, 1, 1}, t0); err != nil {
		t.Fatalf("SubmitAnswers() error = %v", err)
	}
	if g.Correct() != 3 {
		t.Errorf("Correct() = %d, want 3", g.Correct())
	}
}
