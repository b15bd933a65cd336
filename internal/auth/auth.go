package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
)

// UserStore is the persistence needed to register and authenticate users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator registers users and checks their credentials.
type Authenticator struct {
	users UserStore
}

// NewAuthenticator creates an [Authenticator] over users.
func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Register hashes password and stores a new user.
//
// A taken email or username yields an error wrapping [shared.ErrDuplicate].
func (a *Authenticator) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", shared.ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(0, strings.TrimSpace(username), strings.TrimSpace(email), hash)
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login returns the user whose email and password match.
//
// Unknown emails and wrong passwords both yield [shared.ErrInvalidCredentials].
func (a *Authenticator) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.PasswordHash(), password) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// EmailTaken reports whether a user already registered with email.
func (a *Authenticator) EmailTaken(ctx context.Context, email string) (bool, error) {
	return a.exists(a.users.GetByEmail(ctx, email))
}

// UsernameTaken reports whether a user already registered with username.
func (a *Authenticator) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return a.exists(a.users.GetByUsername(ctx, username))
}

// User resolves the user behind an identity.
func (a *Authenticator) User(ctx context.Context, id Identity) (*models.User, error) {
	return a.users.Get(ctx, id.UserID)
}

func (a *Authenticator) exists(_ *models.User, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}
