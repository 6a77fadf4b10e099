package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"edufunkids/internal/credentials"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/progress"
	"edufunkids/internal/repository"
	"edufunkids/internal/security"
	"edufunkids/internal/validation"
)

// Demo account seeded on first use
const (
	DemoEmail      = "demo@edufunkids.com"
	DemoPassword   = "DemoPass123"
	demoChildName  = "Anak Demo"
	demoChildAge   = 7
	demoChildGrade = "2"
	demoAvatar     = "😊"
	demoPoints     = 150

	passwordResetTTL = time.Hour
)

// RegisterInput is a new parent account with its child's details
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ChildName  string `json:"childName"`
	ChildAge   int    `json:"childAge"`
	ChildGrade string `json:"childGrade"`
	Avatar     string `json:"avatar"`
}

// AuthResult is a signed-in session
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	IsDemo    bool      `json:"isDemo,omitempty"`
}

// AuthService handles accounts and access tokens. It is the authentication
// collaborator of the progress core: everything downstream only sees a user id.
type AuthService struct {
	accounts    *repository.AccountRepository
	profiles    repository.ProfileStore
	tokens      *security.TokenIssuer
	mailer      Mailer
	log         *logger.Logger
	demoEnabled bool
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(accounts *repository.AccountRepository, profiles repository.ProfileStore, tokens *security.TokenIssuer, mailer Mailer, demoEnabled bool, log *logger.Logger) *AuthService {
	return &AuthService{
		accounts:    accounts,
		profiles:    profiles,
		tokens:      tokens,
		mailer:      mailer,
		log:         log.With("service", "AuthService"),
		demoEnabled: demoEnabled,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalid(kind error, err error) error {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%w: %s", kind, verr.Message)
	}
	return fmt.Errorf("%w: %v", kind, err)
}

// Register creates an account and its child's default profile, then signs in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, invalid(ErrInvalidEmail, err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, invalid(ErrWeakPassword, err)
	}
	if err := validation.ValidateChildName(in.ChildName); err != nil {
		return nil, invalid(ErrInvalidProfile, err)
	}
	if err := validation.ValidateChildAge(in.ChildAge); err != nil {
		return nil, invalid(ErrInvalidProfile, err)
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	info := progress.ChildInfo{
		Name:   strings.TrimSpace(in.ChildName),
		Age:    in.ChildAge,
		Grade:  strings.TrimSpace(in.ChildGrade),
		Avatar: in.Avatar,
	}
	if err := s.createAccount(ctx, account, info, 0); err != nil {
		return nil, err
	}

	if s.mailer != nil && s.mailer.IsEnabled() {
		if err := s.mailer.SendWelcomeEmail(ctx, email, info.Name); err != nil {
			s.log.Warn("Failed to send welcome email", "user_id", account.ID, "error", err)
		}
	}

	s.log.Info("Account registered", "user_id", account.ID)
	return s.issue(account)
}

// createAccount stores the account and its first profile document. A failed
// profile write removes the account again.
func (s *AuthService) createAccount(ctx context.Context, account *models.Account, info progress.ChildInfo, points int) error {
	if err := s.accounts.Create(ctx, account); err != nil {
		return err
	}
	if err := s.createProfile(ctx, account.ID, info, points); err != nil {
		if derr := s.accounts.Delete(ctx, account.ID); derr != nil {
			s.log.Error("Failed to remove account without profile", "user_id", account.ID, "error", derr)
		}
		return err
	}
	return nil
}

func (s *AuthService) createProfile(ctx context.Context, userID string, info progress.ChildInfo, points int) error {
	now := s.now()
	model := progress.New(now)
	model.UpdateChild(info, now)
	if points > 0 {
		model.MarkDemo(points)
	}
	doc, err := model.Document()
	if err != nil {
		return err
	}
	if err := s.profiles.Set(ctx, userID, doc); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Login checks email and password and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || !security.CheckPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(account)
}

// Demo signs in to the shared demo account, creating it on first use
func (s *AuthService) Demo(ctx context.Context) (*AuthResult, error) {
	if !s.demoEnabled {
		return nil, ErrDemoDisabled
	}

	account, err := s.accounts.GetByEmail(ctx, DemoEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get demo account: %w", err)
	}
	if account == nil {
		hash, err := security.HashPassword(DemoPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account = &models.Account{ID: uuid.NewString(), Email: DemoEmail, PasswordHash: hash, IsDemo: true}
		info := progress.ChildInfo{Name: demoChildName, Age: demoChildAge, Grade: demoChildGrade, Avatar: demoAvatar}
		if err := s.createAccount(ctx, account, info, demoPoints); err != nil {
			return nil, err
		}
		s.log.Info("Demo account created", "user_id", account.ID)
	}
	return s.issue(account)
}

func (s *AuthService) issue(account *models.Account) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, UserID: account.ID, IsDemo: account.IsDemo}, nil
}

// Authenticate resolves an access token to its user id
func (s *AuthService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	return userID, nil
}

// Account returns the account for userID
func (s *AuthService) Account(ctx context.Context, userID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotAuthenticated
	}
	return account, nil
}

// OAuthLogin signs in with a federated identity. An unknown identity is
// linked to the account with the same email, or gets a new account.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email string) (*AuthResult, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, invalid(ErrInvalidEmail, err)
	}

	account, err := s.accounts.GetByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth account: %w", err)
	}
	if account != nil {
		return s.issue(account)
	}

	account, err = s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if account != nil {
		if account.OAuthProvider != "" {
			return nil, ErrEmailInUse
		}
		if err := s.accounts.LinkOAuthProvider(ctx, account.ID, provider, subject); err != nil {
			return nil, err
		}
		s.log.Info("OAuth provider linked", "user_id", account.ID, "provider", provider)
		return s.issue(account)
	}

	account = &models.Account{
		ID:            uuid.NewString(),
		Email:         email,
		OAuthProvider: provider,
		OAuthSubject:  subject,
	}
	info := progress.ChildInfo{Name: models.DefaultChildName}
	if name, err := credentials.GenerateNickname(); err == nil {
		info.Name = name
	}
	if avatar, err := credentials.GenerateAvatar(); err == nil {
		info.Avatar = avatar
	}
	if err := s.createAccount(ctx, account, info, 0); err != nil {
		return nil, err
	}
	s.log.Info("OAuth account created", "user_id", account.ID, "provider", provider)
	return s.issue(account)
}

// RequestPasswordReset mails a one-hour reset token. Unknown emails and
// accounts without a password succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || !account.HasPassword() || account.IsDemo {
		return nil
	}

	now := s.now().UTC()
	reset := &models.PasswordResetToken{
		Token:     uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: now.Add(passwordResetTTL),
		CreatedAt: now,
	}
	if err := s.accounts.CreatePasswordReset(ctx, reset); err != nil {
		return err
	}

	if s.mailer != nil && s.mailer.IsEnabled() {
		if err := s.mailer.SendPasswordResetEmail(ctx, account.Email, reset.Token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}
	return nil
}

// ResetPassword replaces the password of the account a valid token belongs to
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.accounts.GetPasswordReset(ctx, token)
	if err != nil {
		return err
	}
	if reset == nil || s.now().After(reset.ExpiresAt) {
		return ErrInvalidResetToken
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return invalid(ErrWeakPassword, err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, reset.AccountID, hash); err != nil {
		return err
	}
	if err := s.accounts.DeletePasswordReset(ctx, token); err != nil {
		s.log.Warn("Failed to delete used reset token", "user_id", reset.AccountID, "error", err)
	}
	s.log.Info("Password reset", "user_id", reset.AccountID)
	return nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	account, err := s.Account(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(current, account.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validation.ValidatePassword(next); err != nil {
		return invalid(ErrWeakPassword, err)
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.accounts.UpdatePassword(ctx, userID, hash)
}

// CleanupExpiredPasswordResets removes reset tokens past their expiry
func (s *AuthService) CleanupExpiredPasswordResets(ctx context.Context) (int64, error) {
	n, err := s.accounts.DeleteExpiredPasswordResets(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return n, nil
}
