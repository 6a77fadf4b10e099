package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"edufunkids/internal/database"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/repository"
)

const backupVersion = "1.0"

// BackupData is the complete backup file
type BackupData struct {
	Version      string                  `json:"version"`
	ExportedAt   time.Time               `json:"exportedAt"`
	DatabaseType string                  `json:"databaseType"`
	Accounts     []AccountBackup         `json:"accounts"`
	Profiles     []repository.ProfileRow `json:"profiles"`
}

// AccountBackup is an account record in a backup
type AccountBackup struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"passwordHash"`
	OAuthProvider string    `json:"oauthProvider"`
	OAuthSubject  string    `json:"oauthSubject"`
	IsDemo        bool      `json:"isDemo"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db  *database.DB
	log *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	return &BackupService{db: db, log: log.With("service", "BackupService")}
}

// Export writes every account and profile document to w as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	accounts, err := repository.NewAccountRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export accounts: %w", err)
	}
	profiles, err := repository.NewProfileRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export profiles: %w", err)
	}

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
		Accounts:     make([]AccountBackup, 0, len(accounts)),
		Profiles:     profiles,
	}
	if backup.Profiles == nil {
		backup.Profiles = []repository.ProfileRow{}
	}
	for _, a := range accounts {
		backup.Accounts = append(backup.Accounts, AccountBackup(a))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	s.log.Info("Database exported", "accounts", len(backup.Accounts), "profiles", len(backup.Profiles))
	return backup, nil
}

// Import restores a backup in one transaction. With clear set, existing
// accounts, reset tokens and profiles are removed first.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clear bool) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if clear {
		for _, table := range []string{"password_resets", "profiles", "accounts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return nil, fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	accounts := repository.NewAccountRepository(tx)
	for _, a := range backup.Accounts {
		account := models.Account(a)
		if err := accounts.Create(ctx, &account); err != nil {
			return nil, fmt.Errorf("failed to import account %s: %w", a.ID, err)
		}
	}
	profiles := repository.NewProfileRepository(tx)
	for _, row := range backup.Profiles {
		if err := profiles.Restore(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to import profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	s.log.Info("Database imported", "accounts", len(backup.Accounts), "profiles", len(backup.Profiles), "cleared", clear)
	return &backup, nil
}
