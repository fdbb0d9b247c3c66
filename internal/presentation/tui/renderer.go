package tui

import (
	"html"
	"regexp"
	"strings"

	"github.com/muesli/termenv"
)

var (
	tagPattern  = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9-]*)([^>]*)>`)
	hrefPattern = regexp.MustCompile(`href\s*=\s*["']([^"']*)["']`)
)

type style int

const (
	styleBold style = iota
	styleItalic
	styleUnderline
	styleStrike
	styleCode
	styleSpoiler
	styleLink
	styleNone
)

var tagStyles = map[string]style{
	"b": styleBold, "strong": styleBold,
	"i": styleItalic, "em": styleItalic,
	"u": styleUnderline, "ins": styleUnderline,
	"s": styleStrike, "strike": styleStrike, "del": styleStrike,
	"code": styleCode, "pre": styleCode,
	"a":    styleLink,
	"span": styleNone,
}

type frame struct {
	tag   string
	style style
	href  string
}

// Renderer turns Telegram HTML into terminal text.
type Renderer struct {
	profile termenv.Profile
}

// NewRenderer creates a renderer for a color profile. termenv.Ascii drops
// styling and keeps only the text.
func NewRenderer(p termenv.Profile) *Renderer {
	return &Renderer{profile: p}
}

// Render replaces formatting tags with terminal styles, appends link targets
// after their text, and decodes HTML entities.
func (r *Renderer) Render(s string) string {
	var sb strings.Builder
	var stack []frame

	last := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(s, -1) {
		r.write(&sb, s[last:m[0]], stack)
		last = m[1]

		closing := s[m[2]:m[3]] == "/"
		name := strings.ToLower(s[m[4]:m[5]])
		attrs := s[m[6]:m[7]]
		st, known := tagStyles[name]
		if !known {
			continue
		}

		if !closing {
			f := frame{tag: name, style: st}
			if st == styleLink {
				if href := hrefPattern.FindStringSubmatch(attrs); href != nil {
					f.href = href[1]
				}
			}
			if name == "span" && strings.Contains(attrs, "tg-spoiler") {
				f.style = styleSpoiler
			}
			stack = append(stack, f)
			continue
		}

		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].tag != name {
				continue
			}
			if stack[i].href != "" {
				r.write(&sb, " ("+stack[i].href+")", stack[:i])
			}
			stack = stack[:i]
			break
		}
	}
	r.write(&sb, s[last:], stack)
	return sb.String()
}

func (r *Renderer) write(sb *strings.Builder, text string, stack []frame) {
	if text == "" {
		return
	}
	text = html.UnescapeString(text)
	if r.profile == termenv.Ascii || len(stack) == 0 {
		sb.WriteString(text)
		return
	}

	out := r.profile.String(text)
	for _, f := range stack {
		switch f.style {
		case styleBold:
			out = out.Bold()
		case styleItalic:
			out = out.Italic()
		case styleUnderline, styleLink:
			out = out.Underline()
		case styleStrike:
			out = out.CrossOut()
		case styleCode:
			out = out.Faint()
		case styleSpoiler:
			out = out.Reverse()
		}
	}
	sb.WriteString(out.String())
}
