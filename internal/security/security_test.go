package security

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "RahasiaKu123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Errorf("HashPassword() = %q, want a bcrypt hash", hash)
	}

	// Test same password produces different hashes (due to salt)
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "RahasiaKu123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"incorrect password", "wrongPassword1", hash, false},
		{"empty password", "", hash, false},
		{"oauth account without hash", password, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, expiresAt, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt = %v, want a future time", expiresAt)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Verify() = %v, want user-1", userID)
	}
}

func TestTokenIssuerRejects(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, _, _ := issuer.Issue("user-1")

	other := NewTokenIssuer("other-secret", time.Hour)
	expired := NewTokenIssuer("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, _ := expired.Issue("user-1")

	tests := []struct {
		name   string
		issuer *TokenIssuer
		token  string
	}{
		{"wrong secret", other, token},
		{"expired", issuer, expiredToken},
		{"garbage", issuer, "not-a-token"},
		{"empty", issuer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.issuer.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestStateSigner(t *testing.T) {
	signer := NewStateSigner("secret")
	nonce, state := signer.New()

	if !signer.Verify(nonce, state) {
		t.Error("Verify() = false for a freshly signed state")
	}
	if signer.Verify("other-nonce", state) {
		t.Error("Verify() = true for a different nonce")
	}
	if NewStateSigner("other").Verify(nonce, state) {
		t.Error("Verify() = true for a different secret")
	}
	if signer.Verify(nonce, nonce) {
		t.Error("Verify() = true for an unsigned state")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request in the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own budget")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("budget should refill after the window")
	}

	now = now.Add(5 * time.Minute)
	if removed := rl.Cleanup(); removed != 2 {
		t.Errorf("Cleanup() = %d, want 2", removed)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:80", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}
