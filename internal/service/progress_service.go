package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"edufunkids/internal/cache"
	"edufunkids/internal/content"
	"edufunkids/internal/game"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/progress"
	"edufunkids/internal/repository"
	"edufunkids/internal/scoring"
)

const (
	SaveFailedNotice = "Progres belum tersimpan. Coba simpan ulang."
	persistTimeout   = 10 * time.Second
)

// BadgePublisher announces newly earned badges
type BadgePublisher interface {
	Publish(ctx context.Context, event cache.BadgeEvent) error
}

type stopper interface {
	Stop() bool
}

// SessionOutcome is what ending a session changed
type SessionOutcome struct {
	Game     models.GameID           `json:"game,omitempty"`
	Category models.Category         `json:"category,omitempty"`
	Result   *models.SessionResult   `json:"result,omitempty"`
	Update   *progress.SessionUpdate `json:"update,omitempty"`
	Lesson   *progress.LessonUpdate  `json:"lesson,omitempty"`
	Points   int                     `json:"points"`
	Saved    bool                    `json:"saved"`
	Notice   string                  `json:"notice,omitempty"`
}

// SessionState is the current session as shown to the client
type SessionState struct {
	ID string `json:"id"`
	game.View
	Outcome *SessionOutcome `json:"outcome,omitempty"`
}

// AnswerResult is the feedback for one answer
type AnswerResult struct {
	Feedback game.Feedback `json:"feedback"`
	Session  SessionState  `json:"session"`
}

// ProfileView is the profile snapshot with every earned badge
type ProfileView struct {
	models.UserProfile
	Badges []string `json:"badges"`
}

type activeSession struct {
	id       string
	game     models.GameID
	category models.Category
	ctrl     game.Session
	timer    stopper
	outcome  *SessionOutcome
}

// userState is one user's loaded model and session. Every field is guarded by mu.
type userState struct {
	mu       sync.Mutex
	model    *progress.Model
	session  *activeSession
	dirty    bool
	lastSeen time.Time
	evicted  bool
}

// ProgressService owns the in-memory progress of signed-in users. It runs game
// sessions, merges finished sessions into the progress model and persists
// the changed fields. A failed write keeps the merged model in memory and
// marks it dirty until Sync or the next successful write.
type ProgressService struct {
	store       repository.ProfileStore
	log         *logger.Logger
	badges      BadgePublisher
	idleTimeout time.Duration

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) stopper
	newRandom func() game.Random

	mu    sync.Mutex
	users map[string]*userState
}

// NewProgressService creates a progress service over store
func NewProgressService(store repository.ProfileStore, idleTimeout time.Duration, log *logger.Logger) *ProgressService {
	return &ProgressService{
		store:       store,
		log:         log.With("service", "ProgressService"),
		idleTimeout: idleTimeout,
		now:         time.Now,
		afterFunc:   func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) },
		newRandom:   game.NewRandom,
		users:       make(map[string]*userState),
	}
}

// SetBadgePublisher routes badge-earned events to p
func (s *ProgressService) SetBadgePublisher(p BadgePublisher) {
	s.badges = p
}

// lock returns the user's state with its mutex held, loading the profile on
// first access. A missing profile is replaced by the default profile.
func (s *ProgressService) lock(ctx context.Context, userID string) (*userState, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	for {
		s.mu.Lock()
		st, ok := s.users[userID]
		if !ok {
			st = &userState{}
			s.users[userID] = st
		}
		s.mu.Unlock()

		st.mu.Lock()
		if st.evicted {
			st.mu.Unlock()
			continue
		}
		if st.model == nil {
			if err := s.load(ctx, userID, st); err != nil {
				st.mu.Unlock()
				return nil, err
			}
		}
		st.lastSeen = s.now()
		return st, nil
	}
}

func (s *ProgressService) load(ctx context.Context, userID string, st *userState) error {
	now := s.now()
	doc, err := s.store.Get(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrProfileNotFound):
		st.model = progress.New(now)
		st.dirty = true
		s.writeDocument(ctx, userID, st)
		s.log.Info("Default profile created", "user_id", userID)
		return nil
	case err != nil:
		return fmt.Errorf("failed to load profile: %w", err)
	}
	st.model = progress.Load(doc, now)
	return nil
}

func (s *ProgressService) lookup(userID string) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}

// persist writes fields, or the whole document when an earlier write failed
func (s *ProgressService) persist(ctx context.Context, userID string, st *userState, fields map[string]any, subject string) bool {
	if st.dirty {
		return s.writeDocument(ctx, userID, st)
	}
	err := s.store.Update(ctx, userID, fields)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return s.writeDocument(ctx, userID, st)
	}
	if err != nil {
		st.dirty = true
		s.log.Error("Failed to persist profile", "user_id", userID, "subject", subject,
			"error", fmt.Errorf("%w: %w", ErrPersistenceWriteFailure, err))
		return false
	}
	return true
}

func (s *ProgressService) writeDocument(ctx context.Context, userID string, st *userState) bool {
	doc, err := st.model.Document()
	if err == nil {
		err = s.store.Set(ctx, userID, doc)
	}
	if err != nil {
		st.dirty = true
		s.log.Error("Failed to persist profile", "user_id", userID,
			"error", fmt.Errorf("%w: %w", ErrPersistenceWriteFailure, err))
		return false
	}
	st.dirty = false
	return true
}

// Sync retries a write that failed earlier. It reports whether the stored
// profile is now up to date.
func (s *ProgressService) Sync(ctx context.Context, userID string) (bool, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return false, err
	}
	defer st.mu.Unlock()
	if !st.dirty {
		return true, nil
	}
	return s.writeDocument(ctx, userID, st), nil
}

// Profile returns the current snapshot with meta badges included
func (s *ProgressService) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return &ProfileView{UserProfile: st.model.Profile(), Badges: st.model.Badges()}, nil
}

// Dashboard returns the home screen read model
func (s *ProgressService) Dashboard(ctx context.Context, userID string) (progress.Dashboard, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return progress.Dashboard{}, err
	}
	defer st.mu.Unlock()
	return st.model.Dashboard(), nil
}

// Games lists every game with its level map
func (s *ProgressService) Games(ctx context.Context, userID string) ([]progress.GameSummary, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	games := make([]progress.GameSummary, 0, len(content.Games))
	for _, info := range content.Games {
		games = append(games, st.model.GameSummary(info))
	}
	return games, nil
}

// Lessons lists every learning track with its unlock state
func (s *ProgressService) Lessons(ctx context.Context, userID string) ([]progress.CategoryProgress, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return st.model.Dashboard().Categories, nil
}

// Lesson returns the content of an unlocked lesson level
func (s *ProgressService) Lesson(ctx context.Context, userID string, cat models.Category, level int) (content.Lesson, error) {
	lesson, ok := content.LessonFor(cat, level)
	if !ok {
		return content.Lesson{}, fmt.Errorf("%w: %s level %d", game.ErrInvalidLevel, cat, level)
	}

	st, err := s.lock(ctx, userID)
	if err != nil {
		return content.Lesson{}, err
	}
	defer st.mu.Unlock()
	if !st.model.LessonUnlocked(cat, level) {
		return content.Lesson{}, fmt.Errorf("%w: %s level %d", game.ErrLevelLocked, cat, level)
	}
	return lesson, nil
}

// SubmitResult merges a finished session result that was played outside a
// server-side session, and persists it
func (s *ProgressService) SubmitResult(ctx context.Context, userID string, gameID models.GameID, result models.SessionResult) (*SessionOutcome, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return s.applyResult(ctx, userID, st, gameID, result)
}

func (s *ProgressService) applyResult(ctx context.Context, userID string, st *userState, gameID models.GameID, result models.SessionResult) (*SessionOutcome, error) {
	update, err := st.model.ApplySessionResult(gameID, result)
	if err != nil {
		return nil, err
	}
	out := &SessionOutcome{Game: gameID, Result: &result, Update: &update, Points: st.model.Points()}
	out.Saved = s.persist(ctx, userID, st, st.model.SessionFields(gameID), string(gameID))
	if !out.Saved {
		out.Notice = SaveFailedNotice
	}
	if len(update.NewBadges) > 0 {
		s.publishBadges(ctx, userID, gameID, update.NewBadges)
	}
	s.log.Info("Session merged", "user_id", userID, "game", gameID, "level", update.Level,
		"stars", update.Outcome.Stars, "points", update.PointsDelta, "saved", out.Saved)
	return out, nil
}

func (s *ProgressService) publishBadges(ctx context.Context, userID string, gameID models.GameID, badges []string) {
	if s.badges == nil {
		return
	}
	event := cache.BadgeEvent{UserID: userID, Game: gameID, Badges: badges, EarnedAt: s.now().UTC()}
	if err := s.badges.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish badge event", "user_id", userID, "game", gameID, "error", err)
	}
}

// StartGame starts a game level, abandoning any session in progress
func (s *ProgressService) StartGame(ctx context.Context, userID string, gameID models.GameID, level int) (*SessionState, error) {
	if _, ok := content.Game(gameID); !ok {
		return nil, fmt.Errorf("%w: %s", progress.ErrUnknownGame, gameID)
	}
	if level < 1 || level > content.LevelsPerGame {
		return nil, fmt.Errorf("%w: %s level %d", game.ErrInvalidLevel, gameID, level)
	}

	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if !st.model.GameLevelUnlocked(gameID, level) {
		return nil, fmt.Errorf("%w: %s level %d", game.ErrLevelLocked, gameID, level)
	}

	var ctrl game.Session
	switch gameID {
	case models.GameLetterGuess:
		ctrl, err = game.NewLetterGuess(level, s.newRandom())
	case models.GameQuickMath:
		ctrl, err = game.NewQuickMath(level, s.newRandom())
	case models.GameColoring:
		ctrl, err = game.NewColoring(level)
	}
	if err != nil {
		return nil, err
	}
	return s.begin(userID, st, &activeSession{game: gameID, ctrl: ctrl})
}

// StartLesson starts the quiz of a learning-material level
func (s *ProgressService) StartLesson(ctx context.Context, userID string, cat models.Category, level int) (*SessionState, error) {
	ctrl, err := game.NewLesson(cat, level)
	if err != nil {
		return nil, err
	}

	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if !st.model.LessonUnlocked(cat, level) {
		return nil, fmt.Errorf("%w: %s level %d", game.ErrLevelLocked, cat, level)
	}
	return s.begin(userID, st, &activeSession{category: cat, ctrl: ctrl})
}

type timed interface {
	Deadline() time.Time
}

func (s *ProgressService) begin(userID string, st *userState, sess *activeSession) (*SessionState, error) {
	s.discard(st)

	now := s.now()
	sess.id = uuid.NewString()
	if err := sess.ctrl.Start(now); err != nil {
		return nil, err
	}
	st.session = sess

	if t, ok := sess.ctrl.(timed); ok {
		id := sess.id
		sess.timer = s.afterFunc(t.Deadline().Sub(now), func() { s.onDeadline(userID, id) })
	}
	// A lesson without questions ends on start
	if sess.ctrl.State() == game.Ended {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		s.finish(ctx, userID, st)
	}

	s.log.Debug("Session started", "user_id", userID, "session_id", sess.id, "game", sess.game,
		"category", sess.category, "level", sess.ctrl.Level())
	return s.stateOf(sess, now), nil
}

func (s *ProgressService) discard(st *userState) {
	if st.session == nil {
		return
	}
	if st.session.timer != nil {
		st.session.timer.Stop()
	}
	st.session = nil
}

func (s *ProgressService) onDeadline(userID, sessionID string) {
	st := s.lookup(userID)
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.evicted || st.session == nil || st.session.id != sessionID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s.expire(ctx, userID, st, s.now())
}

// expire ends a timed session whose countdown ran out and merges it
func (s *ProgressService) expire(ctx context.Context, userID string, st *userState, now time.Time) {
	sess := st.session
	if sess == nil || sess.outcome != nil {
		return
	}
	if sess.ctrl.State() == game.Ended || sess.ctrl.Expire(now) {
		s.finish(ctx, userID, st)
	}
}

// finish merges the ended session into the model
func (s *ProgressService) finish(ctx context.Context, userID string, st *userState) {
	sess := st.session
	if sess.timer != nil {
		sess.timer.Stop()
	}

	var out *SessionOutcome
	switch c := sess.ctrl.(type) {
	case *game.Lesson:
		update, err := st.model.CompleteLesson(c.Category(), c.Level(), c.Correct())
		if err != nil {
			s.log.Error("Failed to complete lesson", "user_id", userID, "category", c.Category(), "error", err)
			return
		}
		out = &SessionOutcome{Category: c.Category(), Lesson: &update, Points: st.model.Points(), Saved: true}
		if !update.AlreadyCompleted {
			out.Saved = s.persist(ctx, userID, st, st.model.LessonFields(c.Category()), string(c.Category()))
		}
		if !out.Saved {
			out.Notice = SaveFailedNotice
		}
	case interface{ Result() models.SessionResult }:
		var err error
		out, err = s.applyResult(ctx, userID, st, sess.game, c.Result())
		if err != nil {
			s.log.Error("Failed to merge session", "user_id", userID, "game", sess.game, "error", err)
			return
		}
	default:
		return
	}
	sess.outcome = out
}

// active returns the user's session after ending it if its countdown ran out
func (s *ProgressService) active(ctx context.Context, userID string, st *userState) (*activeSession, error) {
	if st.session == nil {
		return nil, ErrNoActiveSession
	}
	s.expire(ctx, userID, st, s.now())
	return st.session, nil
}

func (s *ProgressService) stateOf(sess *activeSession, now time.Time) *SessionState {
	return &SessionState{ID: sess.id, View: sess.ctrl.View(now), Outcome: sess.outcome}
}

// CurrentSession returns the user's session, ended or not
func (s *ProgressService) CurrentSession(ctx context.Context, userID string) (*SessionState, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	sess, err := s.active(ctx, userID, st)
	if err != nil {
		return nil, err
	}
	return s.stateOf(sess, s.now()), nil
}

// Answer submits the chosen option of the current challenge
func (s *ProgressService) Answer(ctx context.Context, userID string, choice int) (*AnswerResult, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	sess, err := s.active(ctx, userID, st)
	if err != nil {
		return nil, err
	}

	answerer, ok := sess.ctrl.(interface {
		Answer(choice int, now time.Time) (game.Feedback, error)
	})
	if !ok {
		return nil, game.ErrUnsupported
	}
	now := s.now()
	fb, err := answerer.Answer(choice, now)
	if err != nil {
		if sess.outcome == nil && sess.ctrl.State() == game.Ended {
			s.finish(ctx, userID, st)
		}
		return nil, err
	}
	if fb.Finished {
		s.finish(ctx, userID, st)
	}
	return &AnswerResult{Feedback: fb, Session: *s.stateOf(sess, now)}, nil
}

// UploadCanvas replaces the drawing of the current coloring session
func (s *ProgressService) UploadCanvas(ctx context.Context, userID string, img image.Image) (scoring.CanvasReport, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return scoring.CanvasReport{}, err
	}
	defer st.mu.Unlock()
	sess, err := s.active(ctx, userID, st)
	if err != nil {
		return scoring.CanvasReport{}, err
	}
	coloring, ok := sess.ctrl.(*game.Coloring)
	if !ok {
		return scoring.CanvasReport{}, game.ErrUnsupported
	}
	return coloring.UploadCanvas(img, s.now())
}

// Submit ends a coloring session by hand, or answers a lesson quiz in one go
func (s *ProgressService) Submit(ctx context.Context, userID string, answers []int) (*SessionState, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	sess, err := s.active(ctx, userID, st)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch c := sess.ctrl.(type) {
	case *game.Coloring:
		if _, err := c.Submit(now); err != nil {
			return nil, err
		}
	case *game.Lesson:
		if err := c.SubmitAnswers(answers, now); err != nil {
			return nil, err
		}
	default:
		return nil, game.ErrUnsupported
	}
	if sess.outcome == nil && sess.ctrl.State() == game.Ended {
		s.finish(ctx, userID, st)
	}
	return s.stateOf(sess, now), nil
}

// Abandon discards the current session without saving anything
func (s *ProgressService) Abandon(ctx context.Context, userID string) error {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()
	if st.session == nil {
		return ErrNoActiveSession
	}
	s.discard(st)
	return nil
}

// mutate applies fn to the model and writes the fields it returns
func (s *ProgressService) mutate(ctx context.Context, userID string, subject string, fn func(m *progress.Model, now time.Time) map[string]any) (bool, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return false, err
	}
	defer st.mu.Unlock()

	fields := fn(st.model, s.now())
	return s.persist(ctx, userID, st, fields, subject), nil
}

// ResetProgress clears points and progress and abandons the current session
func (s *ProgressService) ResetProgress(ctx context.Context, userID string) (bool, error) {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return false, err
	}
	defer st.mu.Unlock()

	s.discard(st)
	st.model.Reset(s.now())
	return s.writeDocument(ctx, userID, st), nil
}

// DeleteData removes the stored profile and forgets the user. The next read
// starts again from the default profile.
func (s *ProgressService) DeleteData(ctx context.Context, userID string) error {
	st, err := s.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	s.discard(st)
	s.evict(userID, st)
	s.log.Info("Profile data deleted", "user_id", userID)
	return nil
}

// evict forgets st; the caller holds st.mu
func (s *ProgressService) evict(userID string, st *userState) {
	st.evicted = true
	s.mu.Lock()
	if s.users[userID] == st {
		delete(s.users, userID)
	}
	s.mu.Unlock()
}

// CleanupIdle forgets users idle for longer than the idle timeout, discarding
// their sessions. Users with an unsaved profile keep their model.
func (s *ProgressService) CleanupIdle(now time.Time) int {
	s.mu.Lock()
	candidates := make(map[string]*userState, len(s.users))
	for id, st := range s.users {
		candidates[id] = st
	}
	s.mu.Unlock()

	removed := 0
	for id, st := range candidates {
		if !st.mu.TryLock() {
			continue
		}
		if !st.evicted && now.Sub(st.lastSeen) > s.idleTimeout {
			s.discard(st)
			if !st.dirty {
				s.evict(id, st)
				removed++
			}
		}
		st.mu.Unlock()
	}
	return removed
}

// RunCleanup calls CleanupIdle every interval until ctx is cancelled
func (s *ProgressService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.CleanupIdle(s.now()); n > 0 {
				s.log.Debug("Idle users cleaned up", "count", n)
			}
		}
	}
}

// Flush retries every pending write and returns how many profiles are
// still unsaved
func (s *ProgressService) Flush(ctx context.Context) int {
	s.mu.Lock()
	users := make(map[string]*userState, len(s.users))
	for id, st := range s.users {
		users[id] = st
	}
	s.mu.Unlock()

	unsaved := 0
	for id, st := range users {
		st.mu.Lock()
		if !st.evicted && st.dirty && !s.writeDocument(ctx, id, st) {
			unsaved++
		}
		st.mu.Unlock()
	}
	return unsaved
}
