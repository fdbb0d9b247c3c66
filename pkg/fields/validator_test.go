package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Valid(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		fieldType string
		input     string
		want      bool
	}{
		{"Phone International", "phone", "+1 (555) 123-4567", true},
		{"Phone With Letter", "phone", "+1 555 CALL", false},
		{"Phone Empty", "phone", "", false},
		{"Phone Too Long", "phone", strings.Repeat("1", 151), false},
		{"Email", "email", "jane.doe+bot@example.co", true},
		{"Email Without TLD", "email", "jane@example", false},
		{"Date Leap Day", "date", "29.02.2024", true},
		{"Date Impossible Day", "date", "31.02.2024", false},
		{"Date Non Leap Year", "date", "29.02.2023", false},
		{"Date US Format", "date", "12/31/2024", true},
		{"Date US Impossible", "date", "02/30/2024", false},
		{"Date Wrong Separator", "date", "2024-02-29", false},
		{"String", "string", "Jane Doe", true},
		{"String Blank", "string", "   ", false},
		{"String Multiline", "string", "a\nb", false},
		{"String Too Long", "string", strings.Repeat("я", 256), false},
		{"String Max Runes", "string", strings.Repeat("я", 255), true},
		{"Number Integer", "number", "42", true},
		{"Number Signed Decimal", "number", "-3.14", true},
		{"Number Trailing Dot", "number", "3.", false},
		{"Number Letters", "number", "12a", false},
		{"Text Multiline", "text", "line one\nline two", true},
		{"Text Blank", "text", "\n\t ", false},
		{"Text Too Long", "text", strings.Repeat("a", 5001), false},
		{"Yes", "yes_no", "YES", true},
		{"No", "yes_no", "no", true},
		{"Maybe", "yes_no", "maybe", false},
		{"Unknown Type", "color", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Valid(tt.fieldType, tt.input))
		})
	}
}

func TestValidator_ConfiguredYesNo(t *testing.T) {
	v := New(WithYesNo([]string{"Да"}, []string{"Нет"}))

	assert.True(t, v.Valid("yes_no", "да"))
	assert.True(t, v.Valid("yes_no", "НЕТ"))
	assert.False(t, v.Valid("yes_no", "yes"))
}
