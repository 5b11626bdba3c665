package boundary

import (
	"fmt"
	"regexp"
	"strings"
)

// Code is a validated, lower-cased ISO 3166-1 alpha-2 region code.
type Code string

var codePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// ErrCodeType indicates the region code input was not textual.
type ErrCodeType struct {
	Value interface{}
}

func (e *ErrCodeType) Error() string {
	return fmt.Sprintf("region code must be a string, got %T (%v)", e.Value, e.Value)
}

// ErrCodeEmpty indicates an empty or whitespace-only region code.
type ErrCodeEmpty struct {
	Value string
}

func (e *ErrCodeEmpty) Error() string {
	return fmt.Sprintf("region code cannot be empty: %q", e.Value)
}

// ErrCodeFormat indicates input that is not a 2-letter alphabetic code.
type ErrCodeFormat struct {
	Value string
}

func (e *ErrCodeFormat) Error() string {
	return fmt.Sprintf("region code %q must be a 2-letter ISO 3166-1 alpha-2 code", e.Value)
}

// ErrNotFound indicates a well-formed code missing from the boundary store.
type ErrNotFound struct {
	Code string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("region code %q not found in boundary store (codes are case-insensitive 2-letter ISO 3166-1 alpha-2)", e.Code)
}

// ParseCode validates a region code before any network or geometry work.
// Checks run in order: type, emptiness, 2-letter alphabetic pattern. The
// returned code is lower-cased.
func ParseCode(v interface{}) (Code, error) {
	s, ok := v.(string)
	if !ok {
		return "", &ErrCodeType{Value: v}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ErrCodeEmpty{Value: s}
	}
	if !codePattern.MatchString(s) {
		return "", &ErrCodeFormat{Value: s}
	}
	return Code(strings.ToLower(s)), nil
}
