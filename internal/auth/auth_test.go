package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  bool
	}{
		{"valid password", "password123", 10, false},
		{"empty password", "", 10, false},
		{"out of range cost falls back", "password123", 99, false},
		{"zero cost falls back", "password123", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if (err != nil) != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && hash == "" {
				t.Error("HashPassword() returned empty hash")
			}
		})
	}
}

func TestHashPassword_DifferentHashes(t *testing.T) {
	hash1, _ := HashPassword("samepassword", 10)
	hash2, _ := HashPassword("samepassword", 10)
	if hash1 == hash2 {
		t.Error("HashPassword() should salt: same password must produce different hashes")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1", 10)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "secret1", hash, true},
		{"wrong password", "secret2", hash, false},
		{"empty password", "", hash, false},
		{"garbage hash", "secret1", "not-a-hash", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	access, err := m.IssueAccessToken(userID, "user")
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}
	claims, err := m.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %v, want %v", claims.UserID, userID)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %v, want user", claims.Role)
	}

	refresh, err := m.IssueRefreshToken(userID, "admin")
	if err != nil {
		t.Fatalf("IssueRefreshToken() error = %v", err)
	}
	rc, err := m.ParseRefreshToken(refresh)
	if err != nil {
		t.Fatalf("ParseRefreshToken() error = %v", err)
	}
	if rc.Role != "admin" {
		t.Errorf("Role = %v, want admin", rc.Role)
	}
}

func TestTokenManager_SecretsAreSeparate(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)

	access, _ := m.IssueAccessToken(uuid.New(), "user")
	if _, err := m.ParseRefreshToken(access); err == nil {
		t.Error("ParseRefreshToken() accepted an access token")
	}

	refresh, _ := m.IssueRefreshToken(uuid.New(), "user")
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Error("ParseAccessToken() accepted a refresh token")
	}
}

func TestTokenManager_InvalidTokens(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	other := NewTokenManager("other-secret", "other-secret", 15*time.Minute, time.Hour)
	expired := NewTokenManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	wrongKey, _ := other.IssueAccessToken(uuid.New(), "user")
	expiredToken, _ := expired.IssueAccessToken(uuid.New(), "user")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"empty", ""},
		{"wrong secret", wrongKey},
		{"expired", expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ParseAccessToken(tt.token)
			if err != ErrInvalidToken {
				t.Errorf("ParseAccessToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewOneTimeToken_RoundTrip(t *testing.T) {
	tok, err := NewOneTimeToken(20 * time.Minute)
	if err != nil {
		t.Fatalf("NewOneTimeToken() error = %v", err)
	}
	if tok.Plain == "" || tok.Hash == "" {
		t.Fatal("NewOneTimeToken() returned empty fields")
	}
	if tok.Plain == tok.Hash {
		t.Error("plain value must not equal its hash")
	}
	if got := HashOneTimeToken(tok.Plain); got != tok.Hash {
		t.Errorf("HashOneTimeToken(plain) = %v, want %v", got, tok.Hash)
	}
	if !tok.ExpiresAt.After(time.Now()) {
		t.Error("ExpiresAt should be in the future")
	}
}

func TestNewOneTimeToken_Unique(t *testing.T) {
	a, _ := NewOneTimeToken(time.Minute)
	b, _ := NewOneTimeToken(time.Minute)
	if a.Plain == b.Plain {
		t.Error("two generated tokens must differ")
	}
}
