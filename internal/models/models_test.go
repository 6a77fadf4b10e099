package models

import (
	"math"
	"testing"
	"time"
)

func TestPasswordResetTokenIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := PasswordResetToken{
				Token:     "reset-token",
				AccountID: "acc-1",
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := token.IsExpired(); got != tt.want {
				t.Errorf("PasswordResetToken.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccountHasPassword(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		want    bool
	}{
		{"password account", Account{PasswordHash: "$2a$10$hash"}, true},
		{"oauth only account", Account{OAuthProvider: "google", OAuthSubject: "123"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.HasPassword(); got != tt.want {
				t.Errorf("Account.HasPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionResultNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       SessionResult
		maxLevel int
		want     SessionResult
	}{
		{
			name:     "valid result is unchanged",
			in:       SessionResult{Level: 2, Score: 80, Accuracy: 80, RemainingSeconds: 10, Correct: 8, Total: 10},
			maxLevel: 5,
			want:     SessionResult{Level: 2, Score: 80, Accuracy: 80, RemainingSeconds: 10, Correct: 8, Total: 10},
		},
		{
			name:     "level below range",
			in:       SessionResult{Level: 0},
			maxLevel: 5,
			want:     SessionResult{Level: 1},
		},
		{
			name:     "level above range",
			in:       SessionResult{Level: 9},
			maxLevel: 5,
			want:     SessionResult{Level: 5},
		},
		{
			name:     "negative values clamp to zero",
			in:       SessionResult{Level: 1, Score: -5, RemainingSeconds: -1, Total: -3, Correct: -1, Accuracy: -10},
			maxLevel: 5,
			want:     SessionResult{Level: 1},
		},
		{
			name:     "correct cannot exceed total",
			in:       SessionResult{Level: 1, Correct: 7, Total: 5},
			maxLevel: 5,
			want:     SessionResult{Level: 1, Correct: 5, Total: 5},
		},
		{
			name:     "accuracy above 100",
			in:       SessionResult{Level: 1, Accuracy: 140},
			maxLevel: 5,
			want:     SessionResult{Level: 1, Accuracy: 100},
		},
		{
			name:     "NaN accuracy",
			in:       SessionResult{Level: 1, Accuracy: math.NaN()},
			maxLevel: 5,
			want:     SessionResult{Level: 1},
		},
		{
			name:     "invalid max level",
			in:       SessionResult{Level: 3},
			maxLevel: 0,
			want:     SessionResult{Level: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(tt.maxLevel); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGameProgressRecordTotalStars(t *testing.T) {
	r := NewGameProgressRecord()
	if got := r.TotalStars(); got != 0 {
		t.Errorf("TotalStars() = %v, want 0", got)
	}
	r.LevelStars[1] = 3
	r.LevelStars[2] = 2
	if got := r.TotalStars(); got != 5 {
		t.Errorf("TotalStars() = %v, want 5", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Audio.MusicVolume != 50 || s.Audio.SFXVolume != 70 || s.Audio.VoiceVolume != 80 {
		t.Errorf("volumes = %d/%d/%d, want 50/70/80", s.Audio.MusicVolume, s.Audio.SFXVolume, s.Audio.VoiceVolume)
	}
	if !s.Notifications.Enabled || s.Notifications.Reminders {
		t.Errorf("Notifications = %+v, want enabled without reminders", s.Notifications)
	}
}
