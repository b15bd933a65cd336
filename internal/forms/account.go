package forms

import (
	"context"
	"net/url"
)

// Availability reports whether registration identifiers are already in use.
type Availability interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// Registration is the sign-up form.
type Registration struct {
	Email     string
	Username  string
	Password  string
	Password2 string
}

func RegistrationFromValues(values url.Values) Registration {
	return Registration{
		Email:     value(values, "email"),
		Username:  value(values, "username"),
		Password:  values.Get("password"),
		Password2: values.Get("password2"),
	}
}

// Validate checks the static rules and, when they pass, asks avail whether the
// email or username is taken.
func (f Registration) Validate(ctx context.Context, avail Availability) (*Validation, error) {
	v := &Validation{}

	if v.required("email", f.Email, "Email is required.") {
		v.maxLength("email", f.Email)
		v.email("email", f.Email)
	}

	if v.required("username", f.Username, "Username is required.") {
		v.maxLength("username", f.Username)
		if !usernamePattern.MatchString(f.Username) {
			v.Add("username", CodeInvalidFormat, "Usernames must have only letters, numbers, dots or underscores")
		}
	}

	if v.required("password", f.Password, "Password is required.") && f.Password != f.Password2 {
		v.Add("password", CodeMismatch, "Passwords must match")
	}
	v.required("password2", f.Password2, "Please confirm your password.")

	if !v.Valid() || avail == nil {
		return v, nil
	}

	taken, err := avail.EmailTaken(ctx, f.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		v.Add("email", CodeTaken, "Email already registered.")
	}

	taken, err = avail.UsernameTaken(ctx, f.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		v.Add("username", CodeTaken, "Username already taken")
	}

	return v, nil
}

func (Registration) Describe() []Field {
	return []Field{
		{Name: "email", Label: "Email:", Type: "email", Required: true},
		{Name: "username", Label: "Username:", Type: "text", Required: true},
		{Name: "password", Label: "Password:", Type: "password", Required: true},
		{Name: "password2", Label: "Confirm Password:", Type: "password", Required: true},
	}
}

// Login is the sign-in form.
type Login struct {
	Email      string
	Password   string
	RememberMe bool
}

func LoginFromValues(values url.Values) Login {
	return Login{
		Email:      value(values, "email"),
		Password:   values.Get("password"),
		RememberMe: checked(values, "remember_me"),
	}
}

func (f Login) Validate() *Validation {
	v := &Validation{}
	if v.required("email", f.Email, "Email is required.") {
		v.maxLength("email", f.Email)
		v.email("email", f.Email)
	}
	v.required("password", f.Password, "Password is required.")
	return v
}

func (Login) Describe() []Field {
	return []Field{
		{Name: "email", Label: "Email", Type: "email", Required: true},
		{Name: "password", Label: "Password", Type: "password", Required: true},
		{Name: "remember_me", Label: "Keep me logged in", Type: "checkbox"},
	}
}
