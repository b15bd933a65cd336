package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by [WithIdentity].
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies signed session tokens.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewSessions builds a [Sessions] from config. An empty secret is rejected.
func NewSessions(cfg shared.SessionConfig) (*Sessions, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: session secret is empty", shared.ErrInvalidConfig)
	}

	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	name := cfg.CookieName
	if name == "" {
		name = "tracklist_session"
	}

	return &Sessions{
		secret:     []byte(cfg.Secret),
		ttl:        ttl,
		cookieName: name,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

// CookieName returns the name of the session cookie.
func (s *Sessions) CookieName() string {
	return s.cookieName
}

// Issue signs a token for user that expires after the configured TTL.
func (s *Sessions) Issue(user *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	claims := sessionClaims{
		Name: user.Username(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks the signature and expiry of token and returns its identity.
func (s *Sessions) Verify(token string) (Identity, error) {
	var claims sessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, shared.ErrTokenExpired
	case err != nil:
		return Identity{}, fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	case !parsed.Valid || claims.Subject == "":
		return Identity{}, shared.ErrInvalidToken
	}

	return Identity{UserID: claims.Subject, Username: claims.Name}, nil
}

// Cookie wraps token in the session cookie. Persistent cookies outlive the browser
// session and expire with the token; otherwise the cookie has no Max-Age.
func (s *Sessions) Cookie(token string, expires time.Time, persistent bool) *http.Cookie {
	c := &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent {
		c.Expires = expires
		c.MaxAge = int(expires.Sub(s.now()).Seconds())
	}
	return c
}

// ClearCookie returns a cookie that removes the session from the browser.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
