package models

import "time"

// Account represents a parent login that owns exactly one child profile
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	OAuthProvider string
	OAuthSubject  string
	IsDemo        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the account can sign in with email and password
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
