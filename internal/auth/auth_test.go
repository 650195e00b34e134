package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func (m *memAccounts) CreateAccount(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.Username] = a
	return nil
}

func (m *memAccounts) GetAccount(_ context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return a, nil
}

func newAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(&memAccounts{accounts: map[string]*models.Account{}})
	a.cost = bcrypt.MinCost
	return a
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator()

	account, err := a.Register(ctx, "alice", "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.PasswordHash == "correct-horse" {
		t.Error("Expected password to be hashed")
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"duplicate username", "alice", "another-password", ErrUsernameExists},
		{"weak password", "bob", "short", ErrWeakPassword},
		{"empty username", "", "long-enough", ErrInvalidUsername},
		{"username with space", "bob smith", "long-enough", ErrInvalidUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.username, "x@example.com", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("Authenticate", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "alice", "correct-horse"); err != nil {
			t.Errorf("Expected success, got %v", err)
		}
		if _, err := a.Authenticate(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := a.Authenticate(ctx, "nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestSessionIssuer(t *testing.T) {
	issuer := NewSessionIssuer("secret", time.Hour)

	session, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if session.Username != "alice" || session.Token == "" {
		t.Fatalf("Unexpected session: %+v", session)
	}
	if d := time.Until(session.ExpiresAt); d <= 0 || d > time.Hour {
		t.Errorf("Expected expiry within the hour, got %v", d)
	}

	username, err := issuer.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if username != "alice" {
		t.Errorf("Expected alice, got %s", username)
	}

	t.Run("empty username", func(t *testing.T) {
		if _, err := issuer.Issue(""); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("Expected ErrInvalidUsername, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewSessionIssuer("other", time.Hour).Verify(session.Token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		old := NewSessionIssuer("secret", time.Hour)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		expired, err := old.Issue("alice")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, err := issuer.Verify(expired.Token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := issuer.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
