package progress

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"edufunkids/internal/achievements"
	"edufunkids/internal/content"
	"edufunkids/internal/models"
)

// Document is the loosely typed stored form of a profile
type Document = map[string]any

// Load hydrates a model from a stored document. Missing or malformed fields
// fall back to their defaults; a nil document yields the default profile.
func Load(doc Document, now time.Time) *Model {
	p := defaultProfile(now)
	if doc == nil {
		return &Model{profile: p}
	}

	if s, ok := doc["childName"].(string); ok && s != "" {
		p.ChildName = s
	}
	if s, ok := doc["avatar"].(string); ok && s != "" {
		p.Avatar = s
	}
	if s, ok := asString(doc["childGrade"]); ok {
		p.ChildGrade = s
	}
	if n, ok := asInt(doc["childAge"]); ok {
		p.ChildAge = n
	}
	if n, ok := asInt(doc["points"]); ok {
		p.Points = max(n, 0)
	}
	if b, ok := doc["isDemo"].(bool); ok {
		p.IsDemo = b
	}
	if t, ok := asTime(doc["createdAt"]); ok {
		p.CreatedAt = t
	}
	if t, ok := asTime(doc["updatedAt"]); ok {
		p.UpdatedAt = &t
	}

	p.CompletedLevels = lo.Uniq(asStrings(doc["completedLevels"]))
	p.Achievements = lo.Uniq(asStrings(doc["achievements"]))

	if games, ok := doc["gameProgress"].(map[string]any); ok {
		for id, raw := range games {
			rec, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			p.GameProgress[models.GameID(id)] = loadRecord(models.GameID(id), rec)
		}
	}

	if settings, ok := doc["settings"].(map[string]any); ok {
		loadSettings(&p.Settings, settings)
	}

	m := &Model{profile: p}
	for _, cat := range content.Categories() {
		m.profile.UnlockedLevels[cat] = achievements.UnlockedLevels(m.completedLessonLevels(cat), content.LevelCount(cat))
	}
	return m
}

var legacyLevelKey = regexp.MustCompile(`^level(\d+)(Score|Stars)$`)

// loadRecord keeps only badge ids the game defines, and awards any badge whose
// predicate already holds for the stored counters
func loadRecord(game models.GameID, doc map[string]any) *models.GameProgressRecord {
	rec := models.NewGameProgressRecord()

	for _, n := range asInts(doc["completedLevels"]) {
		if n >= 1 && n <= content.LevelsPerGame && !slices.Contains(rec.CompletedLevels, n) {
			rec.CompletedLevels = append(rec.CompletedLevels, n)
		}
	}
	slices.Sort(rec.CompletedLevels)
	known := lo.Map(achievements.RulesFor(game), func(r achievements.Rule, _ int) string { return r.Badge })
	rec.Badges = lo.Intersect(known, lo.Uniq(asStrings(doc["badges"])))

	if n, ok := asInt(doc["highestScore"]); ok {
		rec.HighestScore = max(n, 0)
	}
	if n, ok := asInt(doc["sessionsPlayed"]); ok {
		rec.SessionsPlayed = max(n, 0)
	}
	if n, ok := asInt(doc["totalCorrect"]); ok {
		rec.TotalCorrect = max(n, 0)
	}
	if n, ok := asInt(doc["totalQuestions"]); ok {
		rec.TotalQuestions = max(n, 0)
	}

	mergeLevelMap(rec.LevelScores, doc["levelScores"], 0, math.MaxInt)
	mergeLevelMap(rec.LevelStars, doc["levelStars"], 0, 3)

	// Older documents kept one flat key per level, e.g. "level3Stars"
	for key, raw := range doc {
		match := legacyLevelKey.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		level, _ := strconv.Atoi(match[1])
		value, ok := asInt(raw)
		if !ok || level < 1 || level > content.LevelsPerGame {
			continue
		}
		if match[2] == "Score" {
			rec.LevelScores[level] = max(rec.LevelScores[level], max(value, 0))
		} else {
			rec.LevelStars[level] = max(rec.LevelStars[level], min(max(value, 0), 3))
		}
	}

	achievements.AwardGameBadges(game, rec)
	return rec
}

func mergeLevelMap(dst map[int]int, raw any, floor, ceil int) {
	src, ok := raw.(map[string]any)
	if !ok {
		return
	}
	for key, v := range src {
		level, err := strconv.Atoi(key)
		if err != nil || level < 1 || level > content.LevelsPerGame {
			continue
		}
		if n, ok := asInt(v); ok {
			dst[level] = max(dst[level], min(max(n, floor), ceil))
		}
	}
}

func loadSettings(s *models.Settings, doc map[string]any) {
	if audio, ok := doc["audio"].(map[string]any); ok {
		setInt(&s.Audio.MusicVolume, audio["musicVolume"])
		setInt(&s.Audio.SFXVolume, audio["sfxVolume"])
		setInt(&s.Audio.VoiceVolume, audio["voiceVolume"])
		setBool(&s.Audio.SoundEnabled, audio["soundEnabled"])
		setBool(&s.Audio.BackgroundMusic, audio["backgroundMusic"])
		setBool(&s.Audio.VoiceNarration, audio["voiceNarration"])
		setBool(&s.Audio.GameSounds, audio["gameSounds"])
	}
	if n, ok := doc["notifications"].(map[string]any); ok {
		setBool(&s.Notifications.Enabled, n["enabled"])
		setBool(&s.Notifications.Progress, n["progress"])
		setBool(&s.Notifications.Achievements, n["achievements"])
		setBool(&s.Notifications.Games, n["games"])
		setBool(&s.Notifications.Reminders, n["reminders"])
	}
}

// Document renders the profile in its stored wire shape
func (m *Model) Document() (Document, error) {
	return ToDocument(m.profile)
}

// ToDocument converts any JSON-serialisable value into the loosely typed form
func ToDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return doc, nil
}

// SessionFields are the field paths written after a game session
func (m *Model) SessionFields(game models.GameID) map[string]any {
	fields := map[string]any{"points": m.profile.Points}
	if rec, ok := m.profile.GameProgress[game]; ok {
		fields["gameProgress."+string(game)] = cloneRecord(rec)
	}
	return fields
}

// LessonFields are the field paths written after a lesson
func (m *Model) LessonFields(cat models.Category) map[string]any {
	return map[string]any{
		"points":                        m.profile.Points,
		"completedLevels":               slices.Clone(m.profile.CompletedLevels),
		"unlockedLevels." + string(cat): slices.Clone(m.profile.UnlockedLevels[cat]),
	}
}

func setInt(dst *int, v any) {
	if n, ok := asInt(v); ok {
		*dst = n
	}
}

func setBool(dst *bool, v any) {
	if b, ok := v.(bool); ok {
		*dst = b
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.Itoa(int(s)), true
	case int:
		return strconv.Itoa(s), true
	default:
		return "", false
	}
}

func asInts(v any) []int {
	items, ok := v.([]any)
	if !ok {
		if ints, ok := v.([]int); ok {
			return ints
		}
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := asInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func asStrings(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []string:
		return append(out, items...)
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	case float64:
		// milliseconds since the epoch
		return time.UnixMilli(int64(t)).UTC(), true
	case map[string]any:
		// {"seconds": ..., "nanoseconds": ...} timestamp objects
		secs, ok := asInt(t["seconds"])
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := asInt(t["nanoseconds"])
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	default:
		return time.Time{}, false
	}
}
