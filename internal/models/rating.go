package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tracklist/internal/shared"
)

const (
	MinRating Rating = 1
	MaxRating Rating = 10
)

// Rating is a user-assigned score for a track, bounded to [MinRating, MaxRating].
type Rating int

// NewRating converts n into a [Rating], rejecting values outside the allowed range.
func NewRating(n int) (Rating, error) {
	r := Rating(n)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d is outside %d-%d", shared.ErrInvalidRating, n, MinRating, MaxRating)
	}
	return r, nil
}

// ParseRating parses user input such as a form field or CLI flag.
func ParseRating(s string) (Rating, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: rating is required", shared.ErrInvalidRating)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", shared.ErrInvalidRating, s)
	}
	return NewRating(n)
}

// Valid reports whether r is within range.
func (r Rating) Valid() bool {
	return r >= MinRating && r <= MaxRating
}

func (r Rating) Int() int {
	return int(r)
}

func (r Rating) String() string {
	return strconv.Itoa(int(r))
}
