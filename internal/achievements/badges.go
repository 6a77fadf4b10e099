// Package achievements evaluates level unlocks and badge awards from a fixed rule table.
package achievements

import (
	"github.com/samber/lo"

	"edufunkids/internal/models"
)

// Rule grants Badge once Met becomes true for a game's record
type Rule struct {
	Badge string
	Met   func(*models.GameProgressRecord) bool
}

func completedLevelsAtLeast(n int) func(*models.GameProgressRecord) bool {
	return func(r *models.GameProgressRecord) bool { return len(r.CompletedLevels) >= n }
}

func highestScoreAtLeast(n int) func(*models.GameProgressRecord) bool {
	return func(r *models.GameProgressRecord) bool { return r.HighestScore >= n }
}

func totalStarsAtLeast(n int) func(*models.GameProgressRecord) bool {
	return func(r *models.GameProgressRecord) bool { return r.TotalStars() >= n }
}

// High-score thresholds are per game.
var gameRules = map[models.GameID][]Rule{
	models.GameLetterGuess: {
		{Badge: "master-huruf", Met: completedLevelsAtLeast(5)},
		{Badge: "perfectionist", Met: highestScoreAtLeast(100)},
	},
	models.GameQuickMath: {
		{Badge: "matematika-master", Met: completedLevelsAtLeast(5)},
		{Badge: "cepat-tangan", Met: highestScoreAtLeast(200)},
		{Badge: "bintang-matematika", Met: totalStarsAtLeast(10)},
	},
	models.GameColoring: {
		{Badge: "seniman-muda", Met: completedLevelsAtLeast(5)},
		{Badge: "warna-master", Met: highestScoreAtLeast(100)},
		{Badge: "bintang-emas", Met: totalStarsAtLeast(10)},
	},
}

// RulesFor returns the badge rules of a game
func RulesFor(game models.GameID) []Rule {
	return gameRules[game]
}

// AwardGameBadges adds every badge whose predicate holds to record.Badges and
// returns the ones that were not there before. Badges are never removed.
func AwardGameBadges(game models.GameID, record *models.GameProgressRecord) []string {
	var awarded []string
	for _, rule := range gameRules[game] {
		if lo.Contains(record.Badges, rule.Badge) || !rule.Met(record) {
			continue
		}
		record.Badges = append(record.Badges, rule.Badge)
		awarded = append(awarded, rule.Badge)
	}
	return awarded
}

// ProfileStats are the profile-wide counters that meta badges depend on
type ProfileStats struct {
	Points                int
	CompletedMaterials    int
	GameBadges            int
	CompletedGameLevels   int
	TotalGameLevels       int
	AllCategoriesComplete bool
}

type metaRule struct {
	badge string
	met   func(ProfileStats) bool
}

var metaRules = []metaRule{
	{"pembelajar-aktif", func(s ProfileStats) bool { return s.CompletedMaterials >= 5 }},
	{"pembelajar-handal", func(s ProfileStats) bool { return s.CompletedMaterials >= 10 }},
	{"kolektor-poin", func(s ProfileStats) bool { return s.Points >= 100 }},
	{"ahli-poin", func(s ProfileStats) bool { return s.Points >= 500 }},
	{"kolektor-lencana", func(s ProfileStats) bool { return s.GameBadges >= 3 }},
	{"pemain-game-handal", func(s ProfileStats) bool { return s.CompletedGameLevels >= 10 }},
	{"master-edufunkids", func(s ProfileStats) bool { return s.AllCategoriesComplete }},
	{"master-game", func(s ProfileStats) bool {
		return s.TotalGameLevels > 0 && s.CompletedGameLevels >= s.TotalGameLevels
	}},
}

// MetaBadges derives the profile-wide badges. They are recomputed on every read
// and never stored.
func MetaBadges(stats ProfileStats) []string {
	earned := []string{}
	for _, rule := range metaRules {
		if rule.met(stats) {
			earned = append(earned, rule.badge)
		}
	}
	return earned
}
