package service

import "errors"

var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrEmailInUse              = errors.New("email already in use")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidEmail            = errors.New("invalid email")
	ErrWeakPassword            = errors.New("password too weak")
	ErrInvalidProfile          = errors.New("invalid child profile")
	ErrInvalidResetToken       = errors.New("invalid or expired reset token")
	ErrDemoDisabled            = errors.New("demo account disabled")
	ErrNoActiveSession         = errors.New("no active session")
	ErrPersistenceWriteFailure = errors.New("profile could not be saved")
)
