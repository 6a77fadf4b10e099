// Package game drives single play sessions. Every controller is a small state
// machine: NotStarted, then InProgress while challenges are presented and
// answered, then Ended. Controllers never touch storage; the caller reads the
// session result once a controller has ended.
package game

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"edufunkids/internal/models"
)

// State is the lifecycle stage of a session
type State string

const (
	NotStarted State = "not_started"
	InProgress State = "in_progress"
	Ended      State = "ended"
)

var (
	ErrSessionNotStarted = errors.New("session not started")
	ErrSessionEnded      = errors.New("session already ended")
	ErrLevelLocked       = errors.New("level is locked")
	ErrInvalidLevel      = errors.New("level does not exist")
	ErrInvalidChoice     = errors.New("choice is not one of the options")
	ErrUnsupported       = errors.New("action not supported by this session")
)

// Random is the randomness a controller needs to build its challenges
type Random interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRandom returns a randomly seeded source
func NewRandom() Random {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Session is what the progress service needs from any controller
type Session interface {
	Level() int
	State() State
	Start(now time.Time) error
	// Expire ends a timed session whose countdown reached zero and reports whether it did
	Expire(now time.Time) bool
	View(now time.Time) View
}

// Challenge is the question currently on screen
type Challenge struct {
	Number  int      `json:"number"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Image   string   `json:"image,omitempty"`
	Options []string `json:"options"`
}

// Feedback answers a submitted choice
type Feedback struct {
	Correct  bool   `json:"correct"`
	Answer   string `json:"answer"`
	Points   int    `json:"points"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished"`
}

// View is a read-only snapshot of a session for clients
type View struct {
	Game             models.GameID   `json:"game,omitempty"`
	Category         models.Category `json:"category,omitempty"`
	Level            int             `json:"level"`
	State            State           `json:"state"`
	Score            int             `json:"score"`
	Correct          int             `json:"correct"`
	Answered         int             `json:"answered"`
	Total            int             `json:"total"`
	RemainingSeconds *int            `json:"remainingSeconds,omitempty"`
	TimedOut         bool            `json:"timedOut,omitempty"`
	Challenge        *Challenge      `json:"challenge,omitempty"`
	Coloring         *ColoringView   `json:"coloring,omitempty"`
}

// lifecycle is the state shared by every controller
type lifecycle struct {
	state     State
	level     int
	startedAt time.Time
	endedAt   time.Time
	timedOut  bool
}

func (l *lifecycle) Level() int   { return l.level }
func (l *lifecycle) State() State { return l.state }

func (l *lifecycle) start(now time.Time) error {
	switch l.state {
	case InProgress:
		return nil
	case Ended:
		return ErrSessionEnded
	}
	l.state = InProgress
	l.startedAt = now
	return nil
}

func (l *lifecycle) running() error {
	switch l.state {
	case NotStarted:
		return ErrSessionNotStarted
	case Ended:
		return ErrSessionEnded
	}
	return nil
}

func (l *lifecycle) end(now time.Time, timedOut bool) {
	l.state = Ended
	l.endedAt = now
	l.timedOut = timedOut
}

// Countdown is a visible timer that ends the session at zero
type Countdown struct {
	Duration  time.Duration
	startedAt time.Time
	started   bool
}

// NewCountdown creates a countdown of d
func NewCountdown(d time.Duration) Countdown {
	return Countdown{Duration: d}
}

// Start begins the countdown
func (c *Countdown) Start(now time.Time) {
	c.startedAt = now
	c.started = true
}

// Remaining is the time left, never negative
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if !c.started {
		return c.Duration
	}
	return max(c.Duration-now.Sub(c.startedAt), 0)
}

// RemainingSeconds is the whole seconds shown on the clock
func (c *Countdown) RemainingSeconds(now time.Time) int {
	return int(math.Ceil(c.Remaining(now).Seconds()))
}

// Expired reports whether the countdown reached zero
func (c *Countdown) Expired(now time.Time) bool {
	return c.started && c.Remaining(now) <= 0
}

// Deadline is when the countdown reaches zero
func (c *Countdown) Deadline() time.Time {
	return c.startedAt.Add(c.Duration)
}

func accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
