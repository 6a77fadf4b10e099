package progress

import (
	"slices"

	"edufunkids/internal/achievements"
	"edufunkids/internal/content"
	"edufunkids/internal/models"
)

// LevelState is how one level looks on a level map
type LevelState struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Unlocked  bool   `json:"unlocked"`
	Completed bool   `json:"completed"`
	Stars     int    `json:"stars"`
	BestScore int    `json:"bestScore"`
}

// GameSummary is a game's progress for display
type GameSummary struct {
	Game         models.GameID `json:"game"`
	Title        string        `json:"title"`
	Levels       []LevelState  `json:"levels"`
	Badges       []string      `json:"badges"`
	HighestScore int           `json:"highestScore"`
	TotalStars   int           `json:"totalStars"`
}

// GameStats aggregates every game the child has played
type GameStats struct {
	TotalGameLevels     int     `json:"totalGameLevels"`
	CompletedGameLevels int     `json:"completedGameLevels"`
	TotalBadges         int     `json:"totalBadges"`
	TotalGamePoints     int     `json:"totalGamePoints"`
	CompletionRate      float64 `json:"completionRate"`
}

// CategoryProgress is a learning track's completion
type CategoryProgress struct {
	Category       models.Category `json:"category"`
	Title          string          `json:"title"`
	Percent        float64         `json:"percent"`
	UnlockedLevels []int           `json:"unlockedLevels"`
	TotalLevels    int             `json:"totalLevels"`
}

// Dashboard is the read model behind the child's home screen
type Dashboard struct {
	ChildName  string             `json:"childName"`
	ChildAge   int                `json:"childAge,omitempty"`
	ChildGrade string             `json:"childGrade,omitempty"`
	Avatar     string             `json:"avatar"`
	Points     int                `json:"points"`
	IsDemo     bool               `json:"isDemo,omitempty"`
	Categories []CategoryProgress `json:"categories"`
	GameStats  GameStats          `json:"gameStats"`
	Games      []GameSummary      `json:"games"`
	Badges     []models.Badge     `json:"badges"`
}

// GameSummary builds the level map of one game
func (m *Model) GameSummary(info content.GameInfo) GameSummary {
	rec, ok := m.profile.GameProgress[info.ID]
	if !ok {
		rec = models.NewGameProgressRecord()
	}
	summary := GameSummary{
		Game:         info.ID,
		Title:        info.Title,
		Badges:       slices.Clone(rec.Badges),
		HighestScore: rec.HighestScore,
		TotalStars:   rec.TotalStars(),
	}
	for level := 1; level <= content.LevelsPerGame; level++ {
		state := LevelState{
			Level:     level,
			Unlocked:  achievements.LevelUnlocked(rec.CompletedLevels, level),
			Completed: slices.Contains(rec.CompletedLevels, level),
			Stars:     rec.LevelStars[level],
			BestScore: rec.LevelScores[level],
		}
		if level <= len(info.Levels) {
			state.Title = info.Levels[level-1]
		}
		summary.Levels = append(summary.Levels, state)
	}
	return summary
}

// GameStats sums every played game. A game counts towards the total once it
// has a record.
func (m *Model) GameStats() GameStats {
	var stats GameStats
	for _, rec := range m.profile.GameProgress {
		stats.TotalGameLevels += content.LevelsPerGame
		stats.CompletedGameLevels += len(rec.CompletedLevels)
		stats.TotalBadges += len(rec.Badges)
		stats.TotalGamePoints += rec.HighestScore
	}
	if stats.TotalGameLevels > 0 {
		stats.CompletionRate = float64(stats.CompletedGameLevels) / float64(stats.TotalGameLevels) * 100
	}
	return stats
}

// Dashboard assembles the full read model
func (m *Model) Dashboard() Dashboard {
	d := Dashboard{
		ChildName:  m.profile.ChildName,
		ChildAge:   m.profile.ChildAge,
		ChildGrade: m.profile.ChildGrade,
		Avatar:     m.profile.Avatar,
		Points:     m.profile.Points,
		IsDemo:     m.profile.IsDemo,
		GameStats:  m.GameStats(),
	}
	for _, mat := range content.Materials() {
		d.Categories = append(d.Categories, CategoryProgress{
			Category:       mat.Category,
			Title:          mat.Title,
			Percent:        m.CategoryCompletionPercent(mat.Category),
			UnlockedLevels: slices.Clone(m.profile.UnlockedLevels[mat.Category]),
			TotalLevels:    len(mat.Levels),
		})
	}
	for _, info := range content.Games {
		d.Games = append(d.Games, m.GameSummary(info))
	}
	for _, id := range m.Badges() {
		d.Badges = append(d.Badges, achievements.Lookup(id))
	}
	if d.Badges == nil {
		d.Badges = []models.Badge{}
	}
	return d
}
