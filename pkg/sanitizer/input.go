package sanitizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KIIGIN/bot-constructor/pkg/fields"
)

// MaxInputRunes bounds inbound text in characters. It matches the longest
// answer a text field accepts, so every answer a field could store gets
// through to validation.
const MaxInputRunes = fields.MaxTextLength

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed length")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput rejects text that is not UTF-8 or longer than MaxInputRunes
// characters and drops control characters other than newline, tab and CR.
func SanitizeInput(input string) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if n := utf8.RuneCountInString(input); n > MaxInputRunes {
		return "", fmt.Errorf("%w: %d characters, limit %d", ErrInputTooLarge, n, MaxInputRunes)
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
