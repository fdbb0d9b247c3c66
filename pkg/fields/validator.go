// Package fields validates raw participant answers against declared field types.
package fields

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Type is a declared field type of an input block.
type Type string

const (
	TypePhone  Type = "phone"
	TypeEmail  Type = "email"
	TypeDate   Type = "date"
	TypeString Type = "string"
	TypeNumber Type = "number"
	TypeText   Type = "text"
	TypeYesNo  Type = "yes_no"
)

// MaxTextLength is the longest answer, in characters, a text field accepts.
const MaxTextLength = 5000

const (
	maxPhoneLen  = 150
	maxStringLen = 255
)

var (
	phonePattern  = regexp.MustCompile(`^[+\-0-9()\s]{1,150}$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	numberPattern = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?$`)
	dotDate       = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])\.(0[1-9]|1[0-2])\.\d{4}$`)
	slashDate     = regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|[12][0-9]|3[01])/\d{4}$`)
)

// Validator checks raw text against a field type.
// The zero value is not usable; use New.
type Validator struct {
	yes map[string]bool
	no  map[string]bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithYesNo sets the words accepted by yes/no fields. Matching is case-insensitive.
func WithYesNo(yes, no []string) Option {
	return func(v *Validator) {
		if len(yes) > 0 {
			v.yes = wordSet(yes)
		}
		if len(no) > 0 {
			v.no = wordSet(no)
		}
	}
}

// New creates a Validator. Yes/no fields accept "yes" and "no" unless configured.
func New(opts ...Option) *Validator {
	v := &Validator{
		yes: wordSet([]string{"yes"}),
		no:  wordSet([]string{"no"}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return set
}

// Valid reports whether text is acceptable for the field type.
// Unknown types accept any text.
func (v *Validator) Valid(fieldType, text string) bool {
	switch Type(fieldType) {
	case TypePhone:
		return utf8.RuneCountInString(text) <= maxPhoneLen && phonePattern.MatchString(text)
	case TypeEmail:
		return emailPattern.MatchString(text)
	case TypeDate:
		return validDate(text)
	case TypeString:
		n := utf8.RuneCountInString(strings.TrimSpace(text))
		return n >= 1 && n <= maxStringLen && !strings.Contains(text, "\n")
	case TypeNumber:
		return numberPattern.MatchString(text)
	case TypeText:
		n := utf8.RuneCountInString(strings.TrimSpace(text))
		return n >= 1 && n <= MaxTextLength
	case TypeYesNo:
		word := strings.ToLower(text)
		return v.yes[word] || v.no[word]
	}
	return true
}

// validDate accepts dd.mm.yyyy and mm/dd/yyyy, rejecting impossible calendar days.
func validDate(text string) bool {
	var layout string
	switch {
	case dotDate.MatchString(text):
		layout = "02.01.2006"
	case slashDate.MatchString(text):
		layout = "01/02/2006"
	default:
		return false
	}
	_, err := time.Parse(layout, text)
	return err == nil
}
