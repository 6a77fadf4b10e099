package service

import (
	"context"
	"errors"
	"testing"

	"edufunkids/internal/models"
)

func TestUpdateChildProfile(t *testing.T) {
	h := newProgressHarness(t)
	settings := NewSettingsService(h.svc, h.svc.log)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      ChildProfileInput
		wantErr error
	}{
		{"valid", ChildProfileInput{ChildName: " Siti ", ChildAge: 8, ChildGrade: "3", Avatar: "👧"}, nil},
		{"empty name", ChildProfileInput{ChildName: "", ChildAge: 8}, ErrInvalidProfile},
		{"age too high", ChildProfileInput{ChildName: "Siti", ChildAge: 13}, ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := settings.UpdateChildProfile(ctx, "u1", tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateChildProfile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	profile := h.store.model(t, "u1").Profile()
	if profile.ChildName != "Siti" || profile.ChildAge != 8 || profile.Avatar != "👧" {
		t.Errorf("stored profile = %+v", profile)
	}
	if profile.UpdatedAt == nil || !profile.UpdatedAt.Equal(h.now) {
		t.Errorf("UpdatedAt = %v, want %v", profile.UpdatedAt, h.now)
	}
}

func TestUpdateAudio(t *testing.T) {
	h := newProgressHarness(t)
	settings := NewSettingsService(h.svc, h.svc.log)
	ctx := context.Background()

	audio := models.DefaultSettings().Audio
	audio.SFXVolume = 101
	if _, err := settings.UpdateAudio(ctx, "u1", audio); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("UpdateAudio(101) error = %v, want ErrInvalidProfile", err)
	}

	audio.SFXVolume = 0
	audio.BackgroundMusic = false
	saved, err := settings.UpdateAudio(ctx, "u1", audio)
	if err != nil || !saved {
		t.Fatalf("UpdateAudio() = %v, %v", saved, err)
	}
	got := h.store.model(t, "u1").Profile().Settings.Audio
	if got != audio {
		t.Errorf("stored audio = %+v, want %+v", got, audio)
	}
}

func TestUpdateNotificationsKeepsOtherSettings(t *testing.T) {
	h := newProgressHarness(t)
	settings := NewSettingsService(h.svc, h.svc.log)
	ctx := context.Background()

	prefs := models.NotificationSettings{Enabled: true, Reminders: true}
	if _, err := settings.UpdateNotifications(ctx, "u1", prefs); err != nil {
		t.Fatalf("UpdateNotifications() error = %v", err)
	}
	stored := h.store.model(t, "u1").Profile().Settings
	if stored.Notifications != prefs {
		t.Errorf("notifications = %+v, want %+v", stored.Notifications, prefs)
	}
	if stored.Audio != models.DefaultSettings().Audio {
		t.Errorf("audio changed to %+v", stored.Audio)
	}
}

func TestSettingsResetKeepsChildDetails(t *testing.T) {
	h := newProgressHarness(t)
	settings := NewSettingsService(h.svc, h.svc.log)
	ctx := context.Background()

	settings.UpdateChildProfile(ctx, "u1", ChildProfileInput{ChildName: "Siti", ChildAge: 8})
	h.svc.SubmitResult(ctx, "u1", models.GameColoring, models.SessionResult{Level: 1, Score: 90, Accuracy: 80})

	if saved, err := settings.ResetProgress(ctx, "u1"); err != nil || !saved {
		t.Fatalf("ResetProgress() = %v, %v", saved, err)
	}
	profile := h.store.model(t, "u1").Profile()
	if profile.Points != 0 || len(profile.GameProgress) != 0 || profile.ChildName != "Siti" {
		t.Errorf("profile after reset = %+v", profile)
	}

	if err := settings.DeleteData(ctx, "u1"); err != nil {
		t.Fatalf("DeleteData() error = %v", err)
	}
	if _, ok := h.store.docs["u1"]; ok {
		t.Error("profile document still stored after DeleteData")
	}
}
