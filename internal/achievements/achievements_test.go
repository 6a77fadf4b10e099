package achievements

import (
	"reflect"
	"testing"

	"edufunkids/internal/models"
)

func TestAwardGameBadges(t *testing.T) {
	tests := []struct {
		name   string
		game   models.GameID
		record *models.GameProgressRecord
		want   []string
	}{
		{
			name:   "nothing earned",
			game:   models.GameLetterGuess,
			record: &models.GameProgressRecord{CompletedLevels: []int{1}, HighestScore: 90},
			want:   nil,
		},
		{
			name:   "all levels and perfect score",
			game:   models.GameLetterGuess,
			record: &models.GameProgressRecord{CompletedLevels: []int{1, 2, 3, 4, 5}, HighestScore: 100},
			want:   []string{"master-huruf", "perfectionist"},
		},
		{
			name:   "quick-math high score threshold is 200",
			game:   models.GameQuickMath,
			record: &models.GameProgressRecord{HighestScore: 199},
			want:   nil,
		},
		{
			name: "quick-math star accumulation",
			game: models.GameQuickMath,
			record: &models.GameProgressRecord{
				HighestScore: 200,
				LevelStars:   map[int]int{1: 3, 2: 3, 3: 2, 4: 2},
			},
			want: []string{"cepat-tangan", "bintang-matematika"},
		},
		{
			name:   "coloring high score threshold is 100",
			game:   models.GameColoring,
			record: &models.GameProgressRecord{HighestScore: 100},
			want:   []string{"warna-master"},
		},
		{
			name:   "already earned is not returned again",
			game:   models.GameColoring,
			record: &models.GameProgressRecord{HighestScore: 120, Badges: []string{"warna-master"}},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AwardGameBadges(tt.game, tt.record)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AwardGameBadges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAwardGameBadgesIsMonotonic(t *testing.T) {
	record := &models.GameProgressRecord{CompletedLevels: []int{1, 2, 3, 4, 5}}
	first := AwardGameBadges(models.GameColoring, record)
	second := AwardGameBadges(models.GameColoring, record)

	if !reflect.DeepEqual(first, []string{"seniman-muda"}) {
		t.Errorf("first award = %v, want [seniman-muda]", first)
	}
	if len(second) != 0 {
		t.Errorf("second award = %v, want none", second)
	}

	// Predicates that stop holding never remove a badge
	record.CompletedLevels = nil
	AwardGameBadges(models.GameColoring, record)
	if !reflect.DeepEqual(record.Badges, []string{"seniman-muda"}) {
		t.Errorf("Badges = %v, want [seniman-muda]", record.Badges)
	}
}

func TestMetaBadges(t *testing.T) {
	tests := []struct {
		name  string
		stats ProfileStats
		want  []string
	}{
		{"empty profile", ProfileStats{}, []string{}},
		{"points", ProfileStats{Points: 500}, []string{"kolektor-poin", "ahli-poin"}},
		{"materials", ProfileStats{CompletedMaterials: 10}, []string{"pembelajar-aktif", "pembelajar-handal"}},
		{
			name:  "all game levels",
			stats: ProfileStats{CompletedGameLevels: 15, TotalGameLevels: 15, GameBadges: 3},
			want:  []string{"kolektor-lencana", "pemain-game-handal", "master-game"},
		},
		{"no games played", ProfileStats{CompletedGameLevels: 0, TotalGameLevels: 0}, []string{}},
		{"every category", ProfileStats{AllCategoriesComplete: true}, []string{"master-edufunkids"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MetaBadges(tt.stats)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MetaBadges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnlockedLevels(t *testing.T) {
	tests := []struct {
		name      string
		completed []int
		count     int
		want      []int
	}{
		{"fresh", nil, 5, []int{1}},
		{"first done", []int{1}, 5, []int{1, 2}},
		{"gap does not skip", []int{1, 3}, 5, []int{1, 2, 4}},
		{"last level", []int{1, 2, 3}, 3, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnlockedLevels(tt.completed, tt.count)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UnlockedLevels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewlyUnlocked(t *testing.T) {
	tests := []struct {
		name      string
		before    []int
		level     int
		wantLevel int
		wantOK    bool
	}{
		{"first completion", nil, 1, 2, true},
		{"repeat completion", []int{1}, 1, 0, false},
		{"last level", []int{1, 2, 3, 4}, 5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := NewlyUnlocked(tt.before, tt.level, 5)
			if level != tt.wantLevel || ok != tt.wantOK {
				t.Errorf("NewlyUnlocked() = (%v, %v), want (%v, %v)", level, ok, tt.wantLevel, tt.wantOK)
			}
		})
	}
}

func TestCatalogueLookup(t *testing.T) {
	ids := make(map[string]bool)
	for _, b := range Catalogue() {
		if ids[b.ID] {
			t.Errorf("duplicate badge id %s", b.ID)
		}
		ids[b.ID] = true
	}
	for game, rules := range gameRules {
		for _, r := range rules {
			if b := Lookup(r.Badge); b.Game != game {
				t.Errorf("Lookup(%s).Game = %v, want %v", r.Badge, b.Game, game)
			}
		}
	}
	for _, r := range metaRules {
		if !ids[r.badge] {
			t.Errorf("meta badge %s missing from catalogue", r.badge)
		}
	}
	if b := Lookup("legacy-badge"); b.Title != "legacy-badge" {
		t.Errorf("Lookup(unknown).Title = %v, want legacy-badge", b.Title)
	}
}
