package sanitizer

import (
	"regexp"
	"strings"
)

var (
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagPattern     = regexp.MustCompile(`(?i)</?([a-zA-Z0-9]+)([^>]*)>`)
	attrPattern    = regexp.MustCompile(`(\w+)\s*=\s*"(.*?)"`)
)

// allowedTags maps each rendered tag to its permitted attributes.
var allowedTags = map[string][]string{
	"b":      nil,
	"strong": nil,
	"i":      nil,
	"em":     nil,
	"u":      nil,
	"ins":    nil,
	"s":      nil,
	"strike": nil,
	"del":    nil,
	"code":   nil,
	"pre":    nil,
	"a":      {"href"},
	"span":   {"class"},
}

// spoilerClass is the only class value kept on span.
const spoilerClass = "tg-spoiler"

// CleanHTML strips comments and unsupported tags and attributes from text.
// Text outside tag syntax is left untouched, and cleaning is idempotent.
func CleanHTML(text string) string {
	text = commentPattern.ReplaceAllString(text, "")
	return tagPattern.ReplaceAllStringFunc(text, rewriteTag)
}

func rewriteTag(tag string) string {
	m := tagPattern.FindStringSubmatch(tag)
	name := strings.ToLower(m[1])

	attrs, ok := allowedTags[name]
	if !ok {
		return ""
	}
	if strings.HasPrefix(tag, "</") {
		return "</" + name + ">"
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(name)
	for _, kv := range attrPattern.FindAllStringSubmatch(m[2], -1) {
		attr, value := kv[1], kv[2]
		if !contains(attrs, attr) {
			continue
		}
		if name == "span" && attr == "class" && value != spoilerClass {
			continue
		}
		b.WriteString(" ")
		b.WriteString(attr)
		b.WriteString(`="`)
		b.WriteString(value)
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
