// Package progress holds the in-memory profile snapshot and mediates every
// mutation so that its invariants hold after each update.
package progress

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"edufunkids/internal/achievements"
	"edufunkids/internal/content"
	"edufunkids/internal/models"
	"edufunkids/internal/scoring"
)

var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrUnknownCategory = errors.New("unknown learning category")
	ErrUnknownLevel    = errors.New("unknown level")
	ErrLevelLocked     = errors.New("level is locked")
)

// Model is a user's progress. It is not safe for concurrent use.
type Model struct {
	profile models.UserProfile
}

// SessionUpdate describes what merging one session result changed
type SessionUpdate struct {
	Game        models.GameID   `json:"game"`
	Level       int             `json:"level"`
	Outcome     scoring.Outcome `json:"outcome"`
	PointsDelta int             `json:"pointsDelta"`
	NewBadges   []string        `json:"newBadges"`
	// NewlyUnlockedLevel is nil unless this session completed a level for the first time
	NewlyUnlockedLevel *int `json:"newlyUnlockedLevel,omitempty"`
}

// LessonUpdate describes what completing a lesson changed
type LessonUpdate struct {
	Category           models.Category `json:"category"`
	Level              int             `json:"level"`
	Correct            int             `json:"correct"`
	PointsDelta        int             `json:"pointsDelta"`
	AlreadyCompleted   bool            `json:"alreadyCompleted"`
	NewlyUnlockedLevel *int            `json:"newlyUnlockedLevel,omitempty"`
}

// New returns the default profile
func New(now time.Time) *Model {
	return &Model{profile: defaultProfile(now)}
}

func defaultProfile(now time.Time) models.UserProfile {
	return models.UserProfile{
		ChildName:       models.DefaultChildName,
		Avatar:          models.DefaultAvatar,
		CompletedLevels: []string{},
		UnlockedLevels:  defaultUnlocked(),
		GameProgress:    map[models.GameID]*models.GameProgressRecord{},
		Achievements:    []string{},
		Settings:        models.DefaultSettings(),
		CreatedAt:       now.UTC(),
	}
}

func defaultUnlocked() map[models.Category][]int {
	unlocked := make(map[models.Category][]int)
	for _, cat := range content.Categories() {
		unlocked[cat] = []int{1}
	}
	return unlocked
}

// Profile returns a deep copy of the current snapshot
func (m *Model) Profile() models.UserProfile {
	return cloneProfile(m.profile)
}

// Points returns the accumulated points
func (m *Model) Points() int {
	return m.profile.Points
}

// Record returns a copy of the game's record, or nil if the game was never played
func (m *Model) Record(game models.GameID) *models.GameProgressRecord {
	rec, ok := m.profile.GameProgress[game]
	if !ok {
		return nil
	}
	return cloneRecord(rec)
}

func (m *Model) record(game models.GameID) *models.GameProgressRecord {
	rec, ok := m.profile.GameProgress[game]
	if !ok {
		rec = models.NewGameProgressRecord()
		m.profile.GameProgress[game] = rec
	}
	return rec
}

// GameLevelUnlocked reports whether a game level can be played
func (m *Model) GameLevelUnlocked(game models.GameID, level int) bool {
	if level < 1 || level > content.LevelsPerGame {
		return false
	}
	var completed []int
	if rec, ok := m.profile.GameProgress[game]; ok {
		completed = rec.CompletedLevels
	}
	return achievements.LevelUnlocked(completed, level)
}

// LessonUnlocked reports whether a lesson level can be started
func (m *Model) LessonUnlocked(cat models.Category, level int) bool {
	return slices.Contains(m.profile.UnlockedLevels[cat], level)
}

// ApplySessionResult merges a finished session into the game's record. Scores
// and stars merge by max, levels and badges by union. Points are additive, so
// submitting the same result twice awards its points twice. A result for a
// level that is still locked is rejected and leaves the model untouched.
func (m *Model) ApplySessionResult(game models.GameID, result models.SessionResult) (SessionUpdate, error) {
	rules, ok := scoring.For(game)
	if !ok {
		return SessionUpdate{}, fmt.Errorf("%w: %s", ErrUnknownGame, game)
	}

	result = result.Normalize(rules.MaxLevel)
	level := result.Level
	if !m.GameLevelUnlocked(game, level) {
		return SessionUpdate{}, fmt.Errorf("%w: %s level %d", ErrLevelLocked, game, level)
	}
	outcome := rules.Evaluate(result)

	rec := m.record(game)
	completedBefore := slices.Clone(rec.CompletedLevels)

	if !slices.Contains(rec.CompletedLevels, level) {
		rec.CompletedLevels = append(rec.CompletedLevels, level)
		slices.Sort(rec.CompletedLevels)
	}
	rec.LevelScores[level] = max(rec.LevelScores[level], outcome.Score)
	rec.LevelStars[level] = max(rec.LevelStars[level], outcome.Stars)
	rec.HighestScore = max(rec.HighestScore, outcome.Score)
	rec.SessionsPlayed++
	rec.TotalCorrect += result.Correct
	rec.TotalQuestions += result.Total

	update := SessionUpdate{
		Game:        game,
		Level:       level,
		Outcome:     outcome,
		PointsDelta: outcome.Points,
		NewBadges:   achievements.AwardGameBadges(game, rec),
	}
	if update.NewBadges == nil {
		update.NewBadges = []string{}
	}
	if next, ok := achievements.NewlyUnlocked(completedBefore, level, rules.MaxLevel); ok {
		update.NewlyUnlockedLevel = &next
	}

	m.profile.Points += outcome.Points
	return update, nil
}

// CompleteLesson records a finished lesson quiz. Only the first completion of a
// level awards points and unlocks the next level.
func (m *Model) CompleteLesson(cat models.Category, level, correct int) (LessonUpdate, error) {
	lesson, ok := content.LessonFor(cat, level)
	if !ok {
		if content.LevelCount(cat) == 0 {
			return LessonUpdate{}, fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
		}
		return LessonUpdate{}, fmt.Errorf("%w: %s level %d", ErrUnknownLevel, cat, level)
	}

	correct = min(max(correct, 0), len(lesson.Quiz))
	update := LessonUpdate{Category: cat, Level: level, Correct: correct}

	key := content.LevelKey(cat, level)
	if slices.Contains(m.profile.CompletedLevels, key) {
		update.AlreadyCompleted = true
		return update, nil
	}

	update.PointsDelta = scoring.LessonPoints(correct)
	m.profile.Points += update.PointsDelta
	m.profile.CompletedLevels = append(m.profile.CompletedLevels, key)

	before := m.profile.UnlockedLevels[cat]
	m.profile.UnlockedLevels[cat] = achievements.UnlockedLevels(m.completedLessonLevels(cat), content.LevelCount(cat))
	if next := level + 1; next <= content.LevelCount(cat) && !slices.Contains(before, next) {
		update.NewlyUnlockedLevel = &next
	}
	return update, nil
}

func (m *Model) completedLessonLevels(cat models.Category) []int {
	var levels []int
	for _, key := range m.profile.CompletedLevels {
		if c, level, ok := content.ParseLevelKey(key); ok && c == cat {
			levels = append(levels, level)
		}
	}
	return lo.Uniq(levels)
}

// CategoryCompletionPercent is the share of a category's lessons completed, in [0,100]
func (m *Model) CategoryCompletionPercent(cat models.Category) float64 {
	total := content.LevelCount(cat)
	if total == 0 {
		return 0
	}
	pct := float64(len(m.completedLessonLevels(cat))) / float64(total) * 100
	return min(pct, 100)
}

// Stats returns the profile-wide counters used by meta badges
func (m *Model) Stats() achievements.ProfileStats {
	stats := achievements.ProfileStats{
		Points:                m.profile.Points,
		CompletedMaterials:    len(m.profile.CompletedLevels),
		TotalGameLevels:       content.LevelsPerGame * len(m.profile.GameProgress),
		AllCategoriesComplete: true,
	}
	for _, rec := range m.profile.GameProgress {
		stats.GameBadges += len(rec.Badges)
		stats.CompletedGameLevels += len(rec.CompletedLevels)
	}
	for _, cat := range content.Categories() {
		if m.CategoryCompletionPercent(cat) < 100 {
			stats.AllCategoriesComplete = false
			break
		}
	}
	return stats
}

// Badges returns every badge the profile holds: game badges, stored
// achievements, and meta badges derived from the current counters
func (m *Model) Badges() []string {
	var all []string
	for _, info := range content.Games {
		if rec, ok := m.profile.GameProgress[info.ID]; ok {
			all = append(all, rec.Badges...)
		}
	}
	all = append(all, m.profile.Achievements...)
	all = append(all, achievements.MetaBadges(m.Stats())...)
	return lo.Uniq(all)
}

// ChildInfo holds the editable child fields
type ChildInfo struct {
	Name   string
	Age    int
	Grade  string
	Avatar string
}

// UpdateChild replaces the child's details
func (m *Model) UpdateChild(info ChildInfo, now time.Time) {
	m.profile.ChildName = info.Name
	m.profile.ChildAge = info.Age
	m.profile.ChildGrade = info.Grade
	if info.Avatar != "" {
		m.profile.Avatar = info.Avatar
	}
	m.touch(now)
}

// UpdateAudio replaces the audio preferences
func (m *Model) UpdateAudio(audio models.AudioSettings, now time.Time) {
	m.profile.Settings.Audio = audio
	m.touch(now)
}

// UpdateNotifications replaces the notification preferences
func (m *Model) UpdateNotifications(n models.NotificationSettings, now time.Time) {
	m.profile.Settings.Notifications = n
	m.touch(now)
}

// MarkDemo flags a demo profile and seeds its points
func (m *Model) MarkDemo(points int) {
	m.profile.IsDemo = true
	m.profile.Points = max(m.profile.Points, points)
}

// Reset clears points and all progress but keeps the child's details and settings
func (m *Model) Reset(now time.Time) {
	fresh := defaultProfile(m.profile.CreatedAt)
	fresh.ChildName = m.profile.ChildName
	fresh.ChildAge = m.profile.ChildAge
	fresh.ChildGrade = m.profile.ChildGrade
	fresh.Avatar = m.profile.Avatar
	fresh.Settings = m.profile.Settings
	fresh.IsDemo = m.profile.IsDemo
	m.profile = fresh
	m.touch(now)
}

func (m *Model) touch(now time.Time) {
	t := now.UTC()
	m.profile.UpdatedAt = &t
}

func cloneProfile(p models.UserProfile) models.UserProfile {
	out := p
	out.CompletedLevels = slices.Clone(p.CompletedLevels)
	out.Achievements = slices.Clone(p.Achievements)
	out.UnlockedLevels = make(map[models.Category][]int, len(p.UnlockedLevels))
	for cat, levels := range p.UnlockedLevels {
		out.UnlockedLevels[cat] = slices.Clone(levels)
	}
	out.GameProgress = make(map[models.GameID]*models.GameProgressRecord, len(p.GameProgress))
	for game, rec := range p.GameProgress {
		out.GameProgress[game] = cloneRecord(rec)
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

func cloneRecord(r *models.GameProgressRecord) *models.GameProgressRecord {
	out := *r
	out.CompletedLevels = slices.Clone(r.CompletedLevels)
	out.Badges = slices.Clone(r.Badges)
	out.LevelScores = make(map[int]int, len(r.LevelScores))
	for k, v := range r.LevelScores {
		out.LevelScores[k] = v
	}
	out.LevelStars = make(map[int]int, len(r.LevelStars))
	for k, v := range r.LevelStars {
		out.LevelStars[k] = v
	}
	return &out
}
