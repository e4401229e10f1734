// Package sanitizer cleans text that remote clients send into a session tree.
package sanitizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a single name or log part.
const DefaultMaxInputSize = 64 << 10

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8 and strips control characters.
type Sanitizer struct {
	maxSize int
}

// New returns a Sanitizer; a non-positive maxSize selects DefaultMaxInputSize.
func New(maxSize int) *Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}
	return &Sanitizer{maxSize: maxSize}
}

// Clean returns input without control characters, so ANSI sequences lose their ESC.
// Newline, tab and carriage return are kept. Oversized input is rejected, not truncated.
func (s *Sanitizer) Clean(input string) (string, error) {
	if len(input) > s.maxSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), s.maxSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// CleanAll cleans every element, failing on the first rejected one.
func (s *Sanitizer) CleanAll(inputs []string) ([]string, error) {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		clean, err := s.Clean(in)
		if err != nil {
			return nil, err
		}
		out[i] = clean
	}
	return out, nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
