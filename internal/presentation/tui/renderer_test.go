package tui

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestRender_Ascii(t *testing.T) {
	r := NewRenderer(termenv.Ascii)

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<b>bold</b> and <i>italic</i>", "bold and italic"},
		{`see <a href="https://example.com">docs</a>.`, "see docs (https://example.com)."},
		{`<span class="tg-spoiler">secret</span>`, "secret"},
		{"Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
		{"<unknown>kept</unknown>", "kept"},
		{"<b>unclosed", "unclosed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Render(tt.in), tt.in)
	}
}

func TestRender_ANSI(t *testing.T) {
	r := NewRenderer(termenv.ANSI)

	out := r.Render("<b>Hi</b> there")

	assert.Contains(t, out, "\x1b[1m")
	assert.Contains(t, out, "Hi")
	assert.Contains(t, out, " there")
	assert.NotContains(t, out, "<b>")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii, "1.2.3")

	assert.Contains(t, buf.String(), "1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
}
