package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"edufunkids/internal/models"
)

//go:embed materials.json
var materialsJSON []byte

// Material is a learning track with leveled lessons
type Material struct {
	Category    models.Category `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Levels      []Lesson        `json:"levels"`
}

// Lesson is one level of a learning track: learning steps followed by a quiz
type Lesson struct {
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Steps       []LessonStep   `json:"steps"`
	Quiz        []QuizQuestion `json:"quiz"`
}

// LessonStep presents a handful of items to learn
type LessonStep struct {
	Title   string       `json:"title"`
	Kind    string       `json:"kind"`
	Content string       `json:"content"`
	Items   []LessonItem `json:"items"`
}

// LessonItem is a single letter, number, color or hijaiyah character
type LessonItem struct {
	Label   string `json:"label"`
	Example string `json:"example,omitempty"`
	Speech  string `json:"speech"`
	Color   string `json:"color,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
}

// QuizQuestion is a multiple-choice question; Answer indexes Options
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

var materials []Material

func init() {
	if err := json.Unmarshal(materialsJSON, &materials); err != nil {
		panic(fmt.Sprintf("content: invalid materials.json: %v", err))
	}
}

// Materials returns every learning track in display order
func Materials() []Material {
	return materials
}

// Categories returns the category identifiers in display order
func Categories() []models.Category {
	cats := make([]models.Category, 0, len(materials))
	for _, m := range materials {
		cats = append(cats, m.Category)
	}
	return cats
}

// MaterialFor looks up a learning track
func MaterialFor(cat models.Category) (Material, bool) {
	for _, m := range materials {
		if m.Category == cat {
			return m, true
		}
	}
	return Material{}, false
}

// LevelCount returns the number of levels in a category, or 0 if unknown
func LevelCount(cat models.Category) int {
	m, ok := MaterialFor(cat)
	if !ok {
		return 0
	}
	return len(m.Levels)
}

// LessonFor looks up one level of a learning track
func LessonFor(cat models.Category, level int) (Lesson, bool) {
	m, ok := MaterialFor(cat)
	if !ok || level < 1 || level > len(m.Levels) {
		return Lesson{}, false
	}
	return m.Levels[level-1], true
}

// LevelKey builds the completedLevels key for a lesson, e.g. "huruf_level_2"
func LevelKey(cat models.Category, level int) string {
	return fmt.Sprintf("%s_level_%d", cat, level)
}

// ParseLevelKey splits a completedLevels key into its category and level
func ParseLevelKey(key string) (models.Category, int, bool) {
	idx := strings.LastIndex(key, "_level_")
	if idx <= 0 {
		return "", 0, false
	}
	level, err := strconv.Atoi(key[idx+len("_level_"):])
	if err != nil || level < 1 {
		return "", 0, false
	}
	return models.Category(key[:idx]), level, true
}

// SpeechPhrases returns every distinct phrase spoken by lesson items
func SpeechPhrases() []string {
	seen := make(map[string]bool)
	var phrases []string
	for _, m := range materials {
		for _, lesson := range m.Levels {
			for _, step := range lesson.Steps {
				for _, item := range step.Items {
					if item.Speech == "" || seen[item.Speech] {
						continue
					}
					seen[item.Speech] = true
					phrases = append(phrases, item.Speech)
				}
			}
		}
	}
	return phrases
}
