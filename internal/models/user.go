package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tracklist/internal/shared"
)

// User is a registered account.
type User struct {
	base
	username     string
	email        string
	passwordHash string
}

// NewUser creates a [User] with the given bcrypt hash. The plaintext password is never held by the model.
func NewUser(sequence int, username, email, passwordHash string) *User {
	return &User{
		base:         newBase(sequence),
		username:     username,
		email:        email,
		passwordHash: passwordHash,
	}
}

func (u *User) Username() string     { return u.username }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }

// Validate checks required fields.
func (u *User) Validate() error {
	if strings.TrimSpace(u.username) == "" {
		return fmt.Errorf("%w: username is required", shared.ErrInvalidInput)
	}
	if !strings.Contains(u.email, "@") {
		return fmt.Errorf("%w: email %q is invalid", shared.ErrInvalidInput, u.email)
	}
	if u.passwordHash == "" {
		return fmt.Errorf("%w: password hash is required", shared.ErrInvalidInput)
	}
	return nil
}

// MarshalJSON omits the password hash.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
	}{u.id, u.username, u.email, u.createdAt})
}
