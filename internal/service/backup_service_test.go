package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/repository"
)

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)
	accounts := repository.NewAccountRepository(src)
	profiles := repository.NewProfileRepository(src)

	accounts.Create(ctx, &models.Account{ID: "a1", Email: "satu@example.com", PasswordHash: "h1"})
	accounts.Create(ctx, &models.Account{ID: "a2", Email: "dua@example.com", OAuthProvider: "google", OAuthSubject: "s2"})
	profiles.Set(ctx, "a1", map[string]any{"childName": "Budi", "points": 40})

	var buf bytes.Buffer
	exported, err := NewBackupService(src, logger.Nop()).Export(ctx, &buf)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(exported.Accounts) != 2 || len(exported.Profiles) != 1 || exported.DatabaseType != "sqlite3" {
		t.Errorf("Export() = %d accounts, %d profiles, type %s", len(exported.Accounts), len(exported.Profiles), exported.DatabaseType)
	}

	dst := openTestDB(t)
	if _, err := NewBackupService(dst, logger.Nop()).Import(ctx, bytes.NewReader(buf.Bytes()), false); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	restored, _ := repository.NewAccountRepository(dst).GetByOAuth(ctx, "google", "s2")
	if restored == nil || restored.Email != "dua@example.com" {
		t.Errorf("restored oauth account = %+v", restored)
	}
	doc, err := repository.NewProfileRepository(dst).Get(ctx, "a1")
	if err != nil || doc["childName"] != "Budi" || doc["points"] != float64(40) {
		t.Errorf("restored profile = %v, %v", doc, err)
	}

	// Importing the same accounts again conflicts unless the tables are cleared
	backup := NewBackupService(dst, logger.Nop())
	if _, err := backup.Import(ctx, bytes.NewReader(buf.Bytes()), false); err == nil {
		t.Error("Import() of duplicate accounts should fail")
	}
	if _, err := backup.Import(ctx, bytes.NewReader(buf.Bytes()), true); err != nil {
		t.Errorf("Import(clear) error = %v", err)
	}
	all, _ := repository.NewAccountRepository(dst).List(ctx)
	if len(all) != 2 {
		t.Errorf("accounts after clear import = %d, want 2", len(all))
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	svc := NewBackupService(openTestDB(t), logger.Nop())
	_, err := svc.Import(context.Background(), strings.NewReader(`{"version":"9.9"}`), false)
	if err == nil || !strings.Contains(err.Error(), "unsupported backup version") {
		t.Errorf("Import() error = %v, want unsupported version", err)
	}
}
