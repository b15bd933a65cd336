package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/repositories"
	"github.com/desertthunder/tracklist/internal/shared"
)

func setupAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return NewAuthenticator(repositories.NewUserRepository(db))
}

func TestPassword(t *testing.T) {
	t.Run("Hash And Check", func(t *testing.T) {
		hash, err := HashPassword("pw123")
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		if hash == "pw123" || !strings.HasPrefix(hash, "$2") {
			t.Errorf("expected a bcrypt hash, got %q", hash)
		}
		if !CheckPassword(hash, "pw123") {
			t.Error("expected matching password to verify")
		}
		if CheckPassword(hash, "wrong") {
			t.Error("expected wrong password to fail")
		}
	})

	t.Run("Salted", func(t *testing.T) {
		a, _ := HashPassword("pw123")
		b, _ := HashPassword("pw123")
		if a == b {
			t.Error("expected different hashes for the same password")
		}
	})

	t.Run("Too Long", func(t *testing.T) {
		if _, err := HashPassword(strings.Repeat("x", 73)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()

	t.Run("Register Then Login", func(t *testing.T) {
		a := setupAuthenticator(t)

		user, err := a.Register(ctx, "alice", "a@x.com", "pw123")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if user.PasswordHash() == "pw123" {
			t.Error("plaintext password must not be stored")
		}

		loggedIn, err := a.Login(ctx, "a@x.com", "pw123")
		if err != nil {
			t.Fatalf("expected login to succeed: %v", err)
		}
		if loggedIn.ID() != user.ID() {
			t.Errorf("expected user %s, got %s", user.ID(), loggedIn.ID())
		}

		resolved, err := a.User(ctx, Identity{UserID: user.ID()})
		if err != nil || resolved.Username() != "alice" {
			t.Errorf("expected to resolve alice, got %v %v", resolved, err)
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		a := setupAuthenticator(t)
		if _, err := a.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
			t.Fatalf("failed to register: %v", err)
		}

		if _, err := a.Login(ctx, "a@x.com", "nope"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Unknown Email", func(t *testing.T) {
		a := setupAuthenticator(t)
		if _, err := a.Login(ctx, "ghost@x.com", "pw123"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Duplicate Registration", func(t *testing.T) {
		a := setupAuthenticator(t)
		if _, err := a.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
			t.Fatalf("failed to register: %v", err)
		}

		if _, err := a.Register(ctx, "alice2", "a@x.com", "pw123"); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate for email, got %v", err)
		}

		taken, err := a.EmailTaken(ctx, "a@x.com")
		if err != nil || !taken {
			t.Errorf("expected email to be taken, got %v %v", taken, err)
		}
		taken, err = a.UsernameTaken(ctx, "bob")
		if err != nil || taken {
			t.Errorf("expected bob to be free, got %v %v", taken, err)
		}
	})

	t.Run("Empty Password", func(t *testing.T) {
		a := setupAuthenticator(t)
		if _, err := a.Register(ctx, "alice", "a@x.com", ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSessions(t *testing.T) {
	cfg := shared.SessionConfig{Secret: "s3cret", CookieName: "tracklist_session", TTLHours: 1}

	user := models.NewUser(1, "alice", "a@x.com", "hash")
	user.SetID("user-1")

	t.Run("Requires Secret", func(t *testing.T) {
		if _, err := NewSessions(shared.SessionConfig{}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Issue And Verify", func(t *testing.T) {
		s, _ := NewSessions(cfg)

		token, expires, err := s.Issue(user)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		if time.Until(expires) > time.Hour || time.Until(expires) < 59*time.Minute {
			t.Errorf("unexpected expiry %v", expires)
		}

		id, err := s.Verify(token)
		if err != nil {
			t.Fatalf("failed to verify token: %v", err)
		}
		if id.UserID != "user-1" || id.Username != "alice" {
			t.Errorf("unexpected identity %+v", id)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		s, _ := NewSessions(cfg)
		token, _, _ := s.Issue(user)

		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := s.Verify(token); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		s, _ := NewSessions(cfg)
		token, _, _ := s.Issue(user)

		other, _ := NewSessions(shared.SessionConfig{Secret: "different"})
		if _, err := other.Verify(token); !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		s, _ := NewSessions(cfg)
		if _, err := s.Verify("not.a.token"); !errors.Is(err, shared.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Cookies", func(t *testing.T) {
		s, _ := NewSessions(cfg)
		token, expires, _ := s.Issue(user)

		session := s.Cookie(token, expires, false)
		if session.MaxAge != 0 || !session.Expires.IsZero() {
			t.Error("non-persistent cookie should not carry an expiry")
		}
		if !session.HttpOnly || session.SameSite != http.SameSiteLaxMode {
			t.Error("session cookie should be HttpOnly and SameSite=Lax")
		}

		persistent := s.Cookie(token, expires, true)
		if persistent.MaxAge <= 0 {
			t.Errorf("persistent cookie should have a positive MaxAge, got %d", persistent.MaxAge)
		}

		if s.ClearCookie().MaxAge != -1 {
			t.Error("clear cookie should expire immediately")
		}
	})
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := IdentityFrom(ctx); ok {
		t.Error("empty context should carry no identity")
	}

	ctx = WithIdentity(ctx, Identity{UserID: "u1", Username: "alice"})
	id, ok := IdentityFrom(ctx)
	if !ok || id.UserID != "u1" {
		t.Errorf("expected identity u1, got %+v %v", id, ok)
	}
}
