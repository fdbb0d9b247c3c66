package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_LengthLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Under Limit", strings.Repeat("a", MaxInputRunes-1), false},
		{"Exact Limit", strings.Repeat("a", MaxInputRunes), false},
		{"Over Limit", strings.Repeat("a", MaxInputRunes+1), true},
		// Two bytes per rune: the limit counts characters, not bytes.
		{"Cyrillic Under Limit", strings.Repeat("я", MaxInputRunes), false},
		{"Emoji Over Limit", strings.Repeat("🙂", MaxInputRunes+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, got)
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Clean", "hello", "hello"},
		{"Keeps Newlines", "a\nb\tc\r", "a\nb\tc\r"},
		{"Strips Escape", "a\x1b[31mb", "a[31mb"},
		{"Strips Null", "a\x00b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("bad \xff byte")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
