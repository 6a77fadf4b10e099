package service

import (
	"context"
	"strings"
	"time"

	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/progress"
	"edufunkids/internal/validation"
)

// ChildProfileInput is the editable part of the child's profile
type ChildProfileInput struct {
	ChildName  string `json:"childName"`
	ChildAge   int    `json:"childAge"`
	ChildGrade string `json:"childGrade"`
	Avatar     string `json:"avatar"`
}

// SettingsService edits the child's details and preferences through the
// progress service, so the loaded model and the stored document stay in step
type SettingsService struct {
	progress *ProgressService
	log      *logger.Logger
}

// NewSettingsService creates a settings service
func NewSettingsService(progress *ProgressService, log *logger.Logger) *SettingsService {
	return &SettingsService{progress: progress, log: log.With("service", "SettingsService")}
}

// UpdateChildProfile replaces the child's name, age, grade and avatar
func (s *SettingsService) UpdateChildProfile(ctx context.Context, userID string, in ChildProfileInput) (bool, error) {
	name := strings.TrimSpace(in.ChildName)
	if err := validation.ValidateChildName(name); err != nil {
		return false, invalid(ErrInvalidProfile, err)
	}
	if err := validation.ValidateChildAge(in.ChildAge); err != nil {
		return false, invalid(ErrInvalidProfile, err)
	}

	return s.progress.mutate(ctx, userID, "profile", func(m *progress.Model, now time.Time) map[string]any {
		m.UpdateChild(progress.ChildInfo{
			Name:   name,
			Age:    in.ChildAge,
			Grade:  strings.TrimSpace(in.ChildGrade),
			Avatar: in.Avatar,
		}, now)
		p := m.Profile()
		return map[string]any{
			"childName":  p.ChildName,
			"childAge":   p.ChildAge,
			"childGrade": p.ChildGrade,
			"avatar":     p.Avatar,
			"updatedAt":  p.UpdatedAt,
		}
	})
}

// UpdateAudio replaces the audio preferences
func (s *SettingsService) UpdateAudio(ctx context.Context, userID string, audio models.AudioSettings) (bool, error) {
	volumes := []struct {
		field string
		value int
	}{
		{"musicVolume", audio.MusicVolume},
		{"sfxVolume", audio.SFXVolume},
		{"voiceVolume", audio.VoiceVolume},
	}
	for _, v := range volumes {
		if err := validation.ValidateVolume(v.field, v.value); err != nil {
			return false, invalid(ErrInvalidProfile, err)
		}
	}

	return s.progress.mutate(ctx, userID, "audio", func(m *progress.Model, now time.Time) map[string]any {
		m.UpdateAudio(audio, now)
		return map[string]any{
			"settings.audio": audio,
			"updatedAt":      m.Profile().UpdatedAt,
		}
	})
}

// UpdateNotifications replaces the notification preferences
func (s *SettingsService) UpdateNotifications(ctx context.Context, userID string, n models.NotificationSettings) (bool, error) {
	return s.progress.mutate(ctx, userID, "notifications", func(m *progress.Model, now time.Time) map[string]any {
		m.UpdateNotifications(n, now)
		return map[string]any{
			"settings.notifications": n,
			"updatedAt":              m.Profile().UpdatedAt,
		}
	})
}

// ResetProgress clears points and all progress
func (s *SettingsService) ResetProgress(ctx context.Context, userID string) (bool, error) {
	saved, err := s.progress.ResetProgress(ctx, userID)
	if err == nil {
		s.log.Info("Progress reset", "user_id", userID, "saved", saved)
	}
	return saved, err
}

// DeleteData wipes the stored profile document
func (s *SettingsService) DeleteData(ctx context.Context, userID string) error {
	return s.progress.DeleteData(ctx, userID)
}
