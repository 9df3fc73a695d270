package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yukikurage/project-tracker-api/internal/constants"
)

var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD or RFC3339")

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// NormalizeProjectName trims the name and replaces every run of whitespace
// with a single hyphen, so "Foo  Bar" and "Foo Bar" both become "Foo-Bar".
func NormalizeProjectName(name string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-")
}

// IsValidID reports whether id is a well-formed entity identifier.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// FormatDate formats t with layout, returning "" for a nil time.
func FormatDate(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC3339 timestamp.
// A nil or blank input yields a nil time.
func ParseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	s := strings.TrimSpace(*value)
	if t, err := time.Parse(constants.TaskDateLayout, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, ErrInvalidDate
}

// LikeEscapeChar is the ESCAPE character paired with EscapeLike. Backslash
// is avoided because MySQL treats it as a string-literal escape.
const LikeEscapeChar = "!"

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return r.Replace(s)
}
