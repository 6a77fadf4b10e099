package content

import (
	"testing"

	"edufunkids/internal/models"
)

func TestMaterialsLevelCounts(t *testing.T) {
	tests := []struct {
		category models.Category
		want     int
	}{
		{models.CategoryLetters, 3},
		{models.CategoryNumbers, 4},
		{models.CategoryColors, 3},
		{models.CategoryHijaiyah, 3},
		{models.Category("unknown"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := LevelCount(tt.category); got != tt.want {
				t.Errorf("LevelCount(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestLessonsHaveStepsAndQuiz(t *testing.T) {
	for _, m := range Materials() {
		for _, lesson := range m.Levels {
			if len(lesson.Steps) != 3 {
				t.Errorf("%s level %d has %d steps, want 3", m.Category, lesson.Number, len(lesson.Steps))
			}
			if len(lesson.Quiz) != 3 {
				t.Errorf("%s level %d has %d quiz questions, want 3", m.Category, lesson.Number, len(lesson.Quiz))
			}
			for i, q := range lesson.Quiz {
				if q.Answer < 0 || q.Answer >= len(q.Options) {
					t.Errorf("%s level %d question %d answer %d out of range", m.Category, lesson.Number, i, q.Answer)
				}
			}
		}
	}
}

func TestLevelKeyRoundTrip(t *testing.T) {
	tests := []struct {
		key      string
		wantCat  models.Category
		wantLvl  int
		wantOkay bool
	}{
		{"huruf_level_1", models.CategoryLetters, 1, true},
		{"hijaiyah_level_3", models.CategoryHijaiyah, 3, true},
		{"angka_level_x", "", 0, false},
		{"_level_2", "", 0, false},
		{"warna", "", 0, false},
		{"warna_level_0", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cat, lvl, ok := ParseLevelKey(tt.key)
			if ok != tt.wantOkay || cat != tt.wantCat || lvl != tt.wantLvl {
				t.Errorf("ParseLevelKey(%q) = (%v, %v, %v), want (%v, %v, %v)",
					tt.key, cat, lvl, ok, tt.wantCat, tt.wantLvl, tt.wantOkay)
			}
		})
	}

	if got := LevelKey(models.CategoryNumbers, 4); got != "angka_level_4" {
		t.Errorf("LevelKey() = %v, want %v", got, "angka_level_4")
	}
}

func TestGameTables(t *testing.T) {
	for _, g := range Games {
		if len(g.Levels) != LevelsPerGame {
			t.Errorf("game %s has %d level titles, want %d", g.ID, len(g.Levels), LevelsPerGame)
		}
	}
	if len(AllPictureWords()) != 26 {
		t.Errorf("AllPictureWords() returned %d words, want 26", len(AllPictureWords()))
	}
	if _, ok := Game(models.GameID("nope")); ok {
		t.Error("Game() should not find an unknown game")
	}
	if len(SpeechPhrases()) == 0 {
		t.Error("SpeechPhrases() should not be empty")
	}
}
