package forms

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
)

// Code identifies why a field failed validation.
type Code string

const (
	CodeRequired      Code = "required"
	CodeTooLong       Code = "too_long"
	CodeInvalidEmail  Code = "invalid_email"
	CodeInvalidFormat Code = "invalid_format"
	CodeMismatch      Code = "mismatch"
	CodeTaken         Code = "taken"
	CodeInvalidRating Code = "invalid_rating"
	CodeInvalidChoice Code = "invalid_choice"
)

const maxFieldLength = 64

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

// FieldError is a single failed rule for one field.
type FieldError struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validation collects the field errors of one form submission.
type Validation struct {
	Errors []FieldError `json:"errors"`
}

// Add records a failed rule.
func (v *Validation) Add(field string, code Code, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Code: code, Message: message})
}

// Valid reports whether no rule failed.
func (v *Validation) Valid() bool {
	return len(v.Errors) == 0
}

// Has reports whether field failed with code.
func (v *Validation) Has(field string, code Code) bool {
	for _, e := range v.Errors {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

// Messages returns every error message in submission order.
func (v *Validation) Messages() []string {
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

// Err returns nil when valid, otherwise an error wrapping [shared.ErrInvalidInput].
func (v *Validation) Err() error {
	if v.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(v.Messages(), "; "))
}

// Field describes one input of a form for renderers.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Choices  []Choice `json:"choices,omitempty"`
}

// Choice is an option of a select field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (v *Validation) required(field, value, message string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired, message)
		return false
	}
	return true
}

func (v *Validation) maxLength(field, value string) {
	if utf8.RuneCountInString(value) > maxFieldLength {
		v.Add(field, CodeTooLong, fmt.Sprintf("Field must be between 1 and %d characters long.", maxFieldLength))
	}
}

func (v *Validation) email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, CodeInvalidEmail, "Invalid email address.")
	}
}

func (v *Validation) rating(field, value string) models.Rating {
	r, err := models.ParseRating(value)
	if err != nil {
		v.Add(field, CodeInvalidRating,
			fmt.Sprintf("Rating must be a whole number from %d to %d.", models.MinRating, models.MaxRating))
	}
	return r
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func checked(values url.Values, key string) bool {
	switch strings.ToLower(values.Get(key)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}
