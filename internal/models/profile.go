package models

import "time"

// GameID identifies a mini-game. The values are the keys used in stored documents.
type GameID string

const (
	GameLetterGuess GameID = "tebak-huruf"
	GameQuickMath   GameID = "hitung-cepat"
	GameColoring    GameID = "mewarnai"
)

// Category identifies a learning-materials track
type Category string

const (
	CategoryLetters  Category = "huruf"
	CategoryNumbers  Category = "angka"
	CategoryColors   Category = "warna"
	CategoryHijaiyah Category = "hijaiyah"
)

// Defaults applied to a profile that is missing the corresponding fields
const (
	DefaultChildName = "Anak Cerdas"
	DefaultAvatar    = "👦"
)

// UserProfile is the fully populated form of a stored profile document
type UserProfile struct {
	ChildName       string                         `json:"childName"`
	ChildAge        int                            `json:"childAge,omitempty"`
	ChildGrade      string                         `json:"childGrade,omitempty"`
	Avatar          string                         `json:"avatar"`
	Points          int                            `json:"points"`
	CompletedLevels []string                       `json:"completedLevels"`
	UnlockedLevels  map[Category][]int             `json:"unlockedLevels"`
	GameProgress    map[GameID]*GameProgressRecord `json:"gameProgress"`
	Achievements    []string                       `json:"achievements"`
	Settings        Settings                       `json:"settings"`
	IsDemo          bool                           `json:"isDemo,omitempty"`
	CreatedAt       time.Time                      `json:"createdAt"`
	UpdatedAt       *time.Time                     `json:"updatedAt,omitempty"`
}

// GameProgressRecord is one user's history for one game
type GameProgressRecord struct {
	CompletedLevels []int       `json:"completedLevels"`
	Badges          []string    `json:"badges"`
	HighestScore    int         `json:"highestScore"`
	LevelScores     map[int]int `json:"levelScores"`
	LevelStars      map[int]int `json:"levelStars"`
	SessionsPlayed  int         `json:"sessionsPlayed"`
	TotalCorrect    int         `json:"totalCorrect"`
	TotalQuestions  int         `json:"totalQuestions"`
}

// NewGameProgressRecord returns an empty record with initialized maps
func NewGameProgressRecord() *GameProgressRecord {
	return &GameProgressRecord{
		CompletedLevels: []int{},
		Badges:          []string{},
		LevelScores:     map[int]int{},
		LevelStars:      map[int]int{},
	}
}

// TotalStars sums the best star rating of every level
func (r *GameProgressRecord) TotalStars() int {
	total := 0
	for _, stars := range r.LevelStars {
		total += stars
	}
	return total
}

// Settings holds the child's preferences
type Settings struct {
	Audio         AudioSettings        `json:"audio"`
	Notifications NotificationSettings `json:"notifications"`
}

// AudioSettings controls sound playback. Volumes are percentages.
type AudioSettings struct {
	MusicVolume     int  `json:"musicVolume"`
	SFXVolume       int  `json:"sfxVolume"`
	VoiceVolume     int  `json:"voiceVolume"`
	SoundEnabled    bool `json:"soundEnabled"`
	BackgroundMusic bool `json:"backgroundMusic"`
	VoiceNarration  bool `json:"voiceNarration"`
	GameSounds      bool `json:"gameSounds"`
}

// NotificationSettings controls which notifications are sent to the parent
type NotificationSettings struct {
	Enabled      bool `json:"enabled"`
	Progress     bool `json:"progress"`
	Achievements bool `json:"achievements"`
	Games        bool `json:"games"`
	Reminders    bool `json:"reminders"`
}

// DefaultSettings returns the preferences of a new profile
func DefaultSettings() Settings {
	return Settings{
		Audio: AudioSettings{
			MusicVolume:     50,
			SFXVolume:       70,
			VoiceVolume:     80,
			SoundEnabled:    true,
			BackgroundMusic: true,
			VoiceNarration:  true,
			GameSounds:      true,
		},
		Notifications: NotificationSettings{
			Enabled:      true,
			Progress:     true,
			Achievements: true,
			Games:        true,
			Reminders:    false,
		},
	}
}
